package eval

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

var (
	// ErrCompile is returned when compile-time code cannot be translated to
	// an expr program.
	ErrCompile = pkg.NewError("compile-time code error")

	// ErrEvaluate is returned when a compile-time program fails.
	ErrEvaluate = pkg.NewError("compile-time evaluation error")
)

// Evaluator evaluates expanded compile-time code.
type Evaluator struct {
	store    *store.Store
	bindings *syntax.BindingTable
	natives  map[string]any
	logger   log.Logger
	programs sync.Map // xxh3 hash -> *vm.Program
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithNatives makes each value of natives visible to compile-time code
// under its key. A native [github.com/ardnew/stx/expand.Macro] can be bound
// directly by a syntax declaration.
func WithNatives(natives map[string]any) Option {
	return func(ev *Evaluator) { maps.Copy(ev.natives, natives) }
}

// WithLogger sets the logger used to trace compilation and evaluation.
func WithLogger(logger log.Logger) Option {
	return func(ev *Evaluator) { ev.logger = logger.Component("eval") }
}

// New returns an evaluator reading values from st. Serialized syntax is
// decoded against bt.
func New(st *store.Store, bt *syntax.BindingTable, opts ...Option) *Evaluator {
	ev := &Evaluator{
		store:    st,
		bindings: bt,
		natives:  make(map[string]any),
		logger:   log.Discard(),
	}

	for _, opt := range opts {
		opt(ev)
	}

	return ev
}

// Eval evaluates t with identifiers resolved at phase.
func (ev *Evaluator) Eval(ctx context.Context, t term.Term, phase syntax.Phase) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ev.eval(t, phase, ev.globals())
}

// Exports evaluates the variable and function declarations of body in
// order, exported or not, and returns their values keyed by the string form
// of each declared binding. Later declarations see earlier values. Syntax
// declarations and other statements are skipped.
func (ev *Evaluator) Exports(
	ctx context.Context,
	body []term.Term,
	phase syntax.Phase,
) (map[string]any, error) {
	env := ev.globals()
	out := make(map[string]any)

	bind := func(name *syntax.Syntax, v any) error {
		b, err := name.Resolve(phase)
		if err != nil {
			return err
		}

		env[envName(b)] = callable(v)
		out[b.String()] = v

		return nil
	}

	for _, t := range body {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch d := declarationOf(t).(type) {
		case *term.VariableDeclaration:
			if d.IsSyntax() {
				continue
			}

			for _, dc := range d.Declarators {
				bi, ok := dc.Binding.(*term.BindingIdentifier)
				if !ok {
					return nil, ErrCompile.Wrapf("cannot evaluate a destructuring declaration").
						With(slog.String("binding", term.Name(dc.Binding)))
				}

				var v any

				if dc.Init != nil {
					var err error
					if v, err = ev.eval(dc.Init, phase, env); err != nil {
						return nil, err
					}
				}

				if err := bind(bi.Name, v); err != nil {
					return nil, err
				}
			}

		case *term.FunctionDeclaration:
			if d.Name == nil {
				continue
			}

			c, err := ev.function(d.Name, d.Params, d.Body, phase, env)
			if err != nil {
				return nil, err
			}

			if err := bind(d.Name.Name, c); err != nil {
				return nil, err
			}

		default:
			ev.logger.TraceContext(ctx, "skipping statement",
				slog.String("term", term.Name(t)))
		}
	}

	return out, nil
}

func declarationOf(t term.Term) term.Term {
	switch t := t.(type) {
	case *term.VariableDeclarationStatement:
		return t.Declaration
	case *term.Export:
		return t.Declaration
	case *term.ExportDefault:
		return t.Body
	default:
		return t
	}
}

func (ev *Evaluator) eval(t term.Term, phase syntax.Phase, env map[string]any) (any, error) {
	switch f := t.(type) {
	case *term.ArrowExpression:
		return ev.closure(f.Params, f.Body, phase, env)

	case *term.FunctionExpression:
		return ev.function(f.Name, f.Params, f.Body, phase, env)

	case *term.ParenthesizedExpression:
		if len(f.Inner) == 1 {
			if inner, ok := f.Inner[0].(term.Term); ok {
				return ev.eval(inner, phase, env)
			}
		}
	}

	src, err := ev.render(t, phase)
	if err != nil {
		return nil, err
	}

	return ev.run(src, env)
}

// render returns t as expr source.
func (ev *Evaluator) render(t term.Term, phase syntax.Phase) (string, error) {
	src, err := codegen.GenerateExpression(t,
		codegen.WithPhase(phase),
		codegen.WithTaggedCalls(true),
		codegen.WithResolvedNames(true),
	)
	if err != nil {
		return "", ErrCompile.Wrap(err).With(slog.String("term", term.Name(t)))
	}

	return src, nil
}

// program returns the compiled form of src, compiling it on first use.
func (ev *Evaluator) program(src string) (*vm.Program, error) {
	key := xxh3.HashString(src)

	if p, ok := ev.programs.Load(key); ok {
		ev.logger.Trace("program cache hit", slog.String("hash", strconv.FormatUint(key, 16)))

		return p.(*vm.Program), nil //nolint:forcetypeassert
	}

	p, err := expr.Compile(src, ev.builtins()...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", src))
	}

	ev.programs.Store(key, p)

	return p, nil
}

func (ev *Evaluator) run(src string, env map[string]any) (any, error) {
	p, err := ev.program(src)
	if err != nil {
		return nil, err
	}

	ev.logger.Trace("evaluating", slog.String("source", src))

	out, err := expr.Run(p, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", src))
	}

	return out, nil
}

// globals returns a fresh environment holding the locally bound store
// values and the natives.
func (ev *Evaluator) globals() map[string]any {
	env := make(map[string]any, len(ev.natives))

	if ev.store != nil {
		for k, v := range ev.store.Snapshot() {
			if strings.Contains(k, ":") {
				continue
			}

			if r, ok := v.(store.Runtime); ok {
				v = r.Value
			}

			if name, id, ok := strings.Cut(k, "#"); ok {
				env[name+"$"+id] = callable(v)
			}
		}
	}

	for k, v := range ev.natives {
		env[k] = callable(v)
	}

	return env
}

// envName is the spelling of b in rendered code.
func envName(b syntax.Binding) string {
	if b.IsFree() {
		return b.Name
	}

	return b.Name + "$" + strconv.FormatUint(b.ID, 10)
}

// callable exposes a closure to expr as a plain function value.
func callable(v any) any {
	if c, ok := v.(*Closure); ok {
		return c.Call
	}

	return v
}
