package module

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/stx/expand"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

var (
	// ErrImportCycle is returned when a module imports itself, directly or
	// through other modules.
	ErrImportCycle = pkg.NewError("import cycle")

	// ErrNotFound is returned when a module specifier or an imported name
	// cannot be resolved.
	ErrNotFound = pkg.NewError("module not found")
)

// Evaluator evaluates compile-time code and the declarations of invoked
// modules.
type Evaluator interface {
	expand.Evaluator

	// Exports evaluates the declarations of body and returns their values
	// keyed by the string form of each declared binding.
	Exports(ctx context.Context, body []term.Term, phase syntax.Phase) (map[string]any, error)
}

type key struct {
	path  string
	phase syntax.Phase
}

// Modules compiles and links the modules of one compilation. It is not safe
// for concurrent use.
type Modules struct {
	loader    Loader
	reader    *reader.Reader
	store     *store.Store
	bindings  *syntax.BindingTable
	evaluator Evaluator
	base      log.Logger
	logger    log.Logger

	cache     map[key]*Module
	compiling map[string]bool
	invoked   map[*Module]bool
}

// Option configures [Modules].
type Option func(*Modules)

// WithLogger sets the logger used by the orchestrator and the expanders it
// runs.
func WithLogger(logger log.Logger) Option {
	return func(ms *Modules) { ms.base = logger }
}

// WithReader sets the reader used to tokenize module sources.
func WithReader(r *reader.Reader) Option {
	return func(ms *Modules) { ms.reader = r }
}

// New returns an orchestrator loading modules with loader. Compile-time
// values are shared through st, and every module resolves identifiers
// against bt. The evaluator must read the same store and binding table.
func New(
	loader Loader,
	st *store.Store,
	bt *syntax.BindingTable,
	ev Evaluator,
	opts ...Option,
) *Modules {
	ms := &Modules{
		loader:    loader,
		store:     st,
		bindings:  bt,
		evaluator: ev,
		base:      log.Discard(),
		cache:     make(map[key]*Module),
		compiling: make(map[string]bool),
		invoked:   make(map[*Module]bool),
	}

	for _, opt := range opts {
		opt(ms)
	}

	if ms.reader == nil {
		ms.reader = reader.New(reader.WithLogger(ms.base))
	}

	ms.logger = ms.base.Component("module")

	return ms
}

// Store returns the store shared by every module.
func (ms *Modules) Store() *store.Store { return ms.store }

// Bindings returns the binding table shared by every module.
func (ms *Modules) Bindings() *syntax.BindingTable { return ms.bindings }

// LoadAndCompile returns the module at path compiled at phase, loading and
// compiling it on first use. A cached module is reused only while the source
// at path hashes to the same fingerprint.
//
// A module whose compilation is still in progress at any phase cannot be
// loaded again, so cycles through for-syntax imports are rejected as well.
func (ms *Modules) LoadAndCompile(ctx context.Context, path string, phase syntax.Phase) (*Module, error) {
	if ms.compiling[path] {
		return nil, ErrImportCycle.With(
			slog.String("path", path),
			slog.String("phase", phase.String()),
		)
	}

	src, err := ms.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	k := key{path: path, phase: phase}

	if m, ok := ms.cache[k]; ok && m.fingerprint == fingerprint(src) {
		ms.logger.TraceContext(ctx, "module cache hit",
			slog.String("path", path),
			slog.String("phase", phase.String()),
		)

		return m, nil
	}

	ms.compiling[path] = true
	defer delete(ms.compiling, path)

	m, err := ms.Compile(ctx, src, path, phase)
	if err != nil {
		return nil, err
	}

	ms.cache[k] = m

	return m, nil
}

func fingerprint(src string) uint64 { return xxh3.HashString(src) }

// Compile expands src as the module at path. The result is not memoized.
func (ms *Modules) Compile(
	ctx context.Context,
	src, path string,
	phase syntax.Phase,
) (*Module, error) {
	stx, err := ms.reader.Read(src)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("module", path))
	}

	top := syntax.NewScope(syntax.LabelTop)

	items := make([]term.Item, 0, len(stx)+1)
	for _, s := range stx {
		items = append(items, s.AddScope(top, ms.bindings, phase))
	}

	items = append(items, syntax.New(syntax.Token{Kind: syntax.KindEOF}))

	ectx := expand.NewContext(path, ms.store, ms.bindings, ms.evaluator, ms, ms.base).
		AtPhase(phase)
	ectx.CurrentScope = []syntax.Scope{top}

	fp := fingerprint(src)

	ms.logger.DebugContext(ctx, "compiling module",
		slog.String("path", path),
		slog.String("phase", phase.String()),
		slog.String("fingerprint", strconv.FormatUint(fp, 16)),
	)

	terms, err := expand.NewCompiler(ectx).Compile(ctx, items)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("module", path))
	}

	m := &Module{
		Path:        path,
		Phase:       phase,
		Items:       terms,
		names:       make(map[string]*syntax.Syntax),
		fingerprint: fp,
	}

	m.partition()

	for _, t := range m.Exports {
		m.declare(t)

		if err := ms.reexport(ctx, m, t); err != nil {
			return nil, err
		}
	}

	ms.logger.DebugContext(ctx, "compiled module",
		slog.String("path", path),
		slog.Int("terms", len(terms)),
		slog.Int("exports", len(m.names)),
	)

	return m, nil
}

// reexport records the names t exports from another module.
func (ms *Modules) reexport(ctx context.Context, m *Module, t term.Term) error {
	var spec *syntax.Syntax

	switch t := t.(type) {
	case *term.ExportFrom:
		spec = t.ModuleSpecifier
	case *term.ExportAllFrom:
		spec = t.ModuleSpecifier
	}

	if spec == nil {
		return nil
	}

	sub, err := ms.load(ctx, spec.Val(), m.Path, m.Phase, false)
	if err != nil {
		return err
	}

	switch t := t.(type) {
	case *term.ExportFrom:
		for _, es := range t.NamedExports {
			local := es.ExportedName
			if es.Name != nil {
				local = es.Name
			}

			decl, ok := sub.ExportedName(local.Val())
			if !ok {
				return ErrNotFound.Wrapf("module %q does not export %q", spec.Val(), local.Val())
			}

			m.names[es.ExportedName.Val()] = decl
		}

	case *term.ExportAllFrom:
		for _, name := range sub.ExportNames() {
			if _, ok := m.names[name]; ok || name == defaultExport {
				continue
			}

			m.names[name], _ = sub.ExportedName(name)
		}
	}

	return nil
}

// Import implements [expand.Importer]. A for-syntax import compiles the
// module one phase up and invokes it there.
func (ms *Modules) Import(
	ctx context.Context,
	specifier, base string,
	phase syntax.Phase,
	forSyntax bool,
) (expand.Module, error) {
	if forSyntax {
		phase++
	}

	m, err := ms.load(ctx, specifier, base, phase, forSyntax)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (ms *Modules) load(
	ctx context.Context,
	specifier, base string,
	phase syntax.Phase,
	invoke bool,
) (*Module, error) {
	path, err := ms.loader.Resolve(specifier, base)
	if err != nil {
		return nil, err
	}

	m, err := ms.LoadAndCompile(ctx, path, phase)
	if err != nil {
		return nil, err
	}

	if err := ms.Visit(ctx, m); err != nil {
		return nil, err
	}

	if invoke {
		if err := ms.Invoke(ctx, m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Visit stores the compile-time value of each syntax binding m exports
// under its qualified name.
func (ms *Modules) Visit(ctx context.Context, m *Module) error {
	n := 0

	for _, name := range m.ExportNames() {
		decl, _ := m.ExportedName(name)

		b, err := decl.Resolve(m.Phase)
		if err != nil {
			return err
		}

		v, ok := ms.store.Get(b.String())
		if _, runtime := v.(store.Runtime); !ok || runtime {
			continue
		}

		ms.store.Set(store.Key(m.Path, name, m.Phase), v)
		n++
	}

	ms.logger.TraceContext(ctx, "visited module",
		slog.String("path", m.Path),
		slog.String("phase", m.Phase.String()),
		slog.Int("macros", n),
	)

	return nil
}

// Invoke evaluates the run-time declarations of m and of the modules it
// imports, storing each value under its binding and each export under its
// qualified name. A compiled module is invoked at most once.
func (ms *Modules) Invoke(ctx context.Context, m *Module) error {
	if ms.invoked[m] {
		return nil
	}

	ms.invoked[m] = true

	for _, t := range m.Imports {
		spec := importSpecifier(t)
		if spec == nil {
			continue
		}

		if _, err := ms.load(ctx, spec.Val(), m.Path, m.Phase, true); err != nil {
			return err
		}
	}

	vals, err := ms.evaluator.Exports(ctx, m.Items, m.Phase)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("module", m.Path))
	}

	for b, v := range vals {
		ms.store.Set(b, store.Runtime{Value: v})
	}

	for _, name := range m.ExportNames() {
		decl, _ := m.ExportedName(name)

		b, err := decl.Resolve(m.Phase)
		if err != nil {
			return err
		}

		if v, ok := vals[b.String()]; ok {
			ms.store.Set(store.Key(m.Path, name, m.Phase), v)
		}
	}

	ms.logger.DebugContext(ctx, "invoked module",
		slog.String("path", m.Path),
		slog.String("phase", m.Phase.String()),
		slog.Int("values", len(vals)),
	)

	return nil
}

func importSpecifier(t term.Term) *syntax.Syntax {
	switch t := t.(type) {
	case *term.Import:
		return t.ModuleSpecifier
	case *term.ImportNamespace:
		return t.ModuleSpecifier
	default:
		return nil
	}
}
