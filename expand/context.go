package expand

import (
	"context"
	"slices"

	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Evaluator computes compile-time values.
type Evaluator interface {
	// Eval evaluates the fully expanded expression t at phase.
	Eval(ctx context.Context, t term.Term, phase syntax.Phase) (any, error)
}

// Module is the view of a compiled module needed to bind its exports.
type Module interface {
	// ExportedName returns the declaring identifier of the export named
	// name.
	ExportedName(name string) (*syntax.Syntax, bool)

	// ExportNames returns the exported names in sorted order.
	ExportNames() []string
}

// Importer loads the modules named by import declarations.
type Importer interface {
	// Import loads specifier relative to base and makes its compile-time
	// exports available at phase. A for-syntax import makes its run-time
	// exports available at phase+1.
	Import(
		ctx context.Context,
		specifier, base string,
		phase syntax.Phase,
		forSyntax bool,
	) (Module, error)
}

// Context is the state shared by the expanders of one compilation unit at
// one phase.
type Context struct {
	// Path identifies the module being compiled. Relative import
	// specifiers are resolved against it.
	Path      string
	Phase     syntax.Phase
	Env       *Env
	Store     *store.Store
	Bindings  *syntax.BindingTable
	Evaluator Evaluator
	Importer  Importer
	Logger    log.Logger

	// CurrentScope is the stack of scopes entered by the enclosing module
	// and function bodies, innermost last.
	CurrentScope []syntax.Scope

	// UseScope is the use-site scope of the most recent macro invocation,
	// or zero before the first.
	UseScope syntax.Scope
}

// NewContext returns a phase 0 context with a fresh environment.
func NewContext(
	path string,
	st *store.Store,
	bt *syntax.BindingTable,
	ev Evaluator,
	im Importer,
	logger log.Logger,
) *Context {
	return &Context{
		Path:      path,
		Env:       NewEnv(),
		Store:     st,
		Bindings:  bt,
		Evaluator: ev,
		Importer:  im,
		Logger:    logger.Component("expand"),
	}
}

// AtPhase returns a copy of c for compiling the code of phase with a fresh
// environment. The store and binding table are shared.
func (c *Context) AtPhase(phase syntax.Phase) *Context {
	n := *c
	n.Phase = phase
	n.Env = NewEnv()
	n.CurrentScope = slices.Clone(c.CurrentScope)
	n.UseScope = 0

	return &n
}

// pushScope enters sc.
func (c *Context) pushScope(sc syntax.Scope) { c.CurrentScope = append(c.CurrentScope, sc) }

// popScope leaves the innermost scope.
func (c *Context) popScope() { c.CurrentScope = c.CurrentScope[:len(c.CurrentScope)-1] }

// resolve returns the transform bound to stx at the current phase. Values
// stored by syntax declarations of other modules act as compile-time
// transforms.
func (c *Context) resolve(stx *syntax.Syntax) (Transform, error) {
	b, err := stx.Resolve(c.Phase)
	if err != nil {
		return nil, err
	}

	if t, ok := c.Env.Get(b); ok {
		return t, nil
	}

	if b.IsFree() || c.Store == nil {
		return nil, nil
	}

	if v, ok := c.compiletime(b); ok {
		return CompiletimeTransform{Value: v}, nil
	}

	return nil, nil
}

// compiletime returns the stored compile-time value of b.
func (c *Context) compiletime(b syntax.Binding) (any, bool) {
	if c.Store == nil {
		return nil, false
	}

	v, ok := c.Store.Get(b.String())
	if _, runtime := v.(store.Runtime); !ok || runtime {
		return nil, false
	}

	return v, true
}
