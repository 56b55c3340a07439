package expand

import (
	"context"
	"log/slog"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// TokenExpander enforests a stream to exhaustion, registering each
// declaration as it goes so that later items see earlier bindings and
// macros.
type TokenExpander struct {
	ctx *Context
}

// NewTokenExpander returns a token expander over ctx.
func NewTokenExpander(ctx *Context) *TokenExpander { return &TokenExpander{ctx: ctx} }

// Expand returns the terms of items. Syntax declarations, compile-time
// imports, and the end-of-input marker are consumed and do not appear in
// the result.
func (x *TokenExpander) Expand(goctx context.Context, items []term.Item) ([]term.Term, error) {
	enf := NewEnforester(items, x.ctx)

	var out []term.Term

	for !enf.Done() {
		if err := goctx.Err(); err != nil {
			return nil, err
		}

		t, err := enf.Enforest(KindModule)
		if err != nil {
			return nil, err
		}

		if t == nil {
			continue
		}

		t, keep, err := x.register(goctx, t)
		if err != nil {
			return nil, err
		}

		if keep {
			out = append(out, t)
		}
	}

	return out, nil
}

//nolint:cyclop
func (x *TokenExpander) register(goctx context.Context, t term.Term) (term.Term, bool, error) {
	switch t := t.(type) {
	case *term.EOF:
		return nil, false, nil

	case *term.VariableDeclarationStatement:
		decl, keep, err := x.declare(goctx, t.Declaration)
		if err != nil || !keep {
			return nil, false, err
		}

		return &term.VariableDeclarationStatement{Declaration: decl}, true, nil

	case *term.Export:
		switch d := t.Declaration.(type) {
		case *term.VariableDeclaration:
			decl, _, err := x.declare(goctx, d)
			if err != nil {
				return nil, false, err
			}

			return &term.Export{Declaration: decl}, true, nil

		case *term.FunctionDeclaration:
			return &term.Export{Declaration: x.declareFunction(d)}, true, nil

		case *term.ClassDeclaration:
			return &term.Export{Declaration: x.declareClass(d)}, true, nil
		}

		return t, true, nil

	case *term.ExportDefault:
		switch d := t.Body.(type) {
		case *term.FunctionDeclaration:
			return &term.ExportDefault{Body: x.declareFunction(d)}, true, nil

		case *term.ClassDeclaration:
			return &term.ExportDefault{Body: x.declareClass(d)}, true, nil
		}

		return t, true, nil

	case *term.FunctionDeclaration:
		return x.declareFunction(t), true, nil

	case *term.ClassDeclaration:
		return x.declareClass(t), true, nil

	case *term.Import:
		return x.bindImport(goctx, t)

	case *term.ImportNamespace:
		return x.bindNamespace(goctx, t)

	case *term.Pragma:
		return t, true, x.pragma(goctx, t)
	}

	return t, true, nil
}

// unuse strips the scope of the most recent macro invocation from the
// identifiers of a binding pattern.
func (x *TokenExpander) unuse(binding term.Term) term.Term {
	if x.ctx.UseScope == 0 {
		return binding
	}

	use, phase := x.ctx.UseScope, x.ctx.Phase

	return term.MapTerm(binding, func(s *syntax.Syntax) *syntax.Syntax {
		return s.RemoveScope(use, phase)
	})
}

func (x *TokenExpander) registerVar(name *syntax.Syntax) syntax.Binding {
	b := x.ctx.Bindings.Add(name, syntax.Gensym(name.Val()), x.ctx.Phase)
	x.ctx.Env.Set(b, VarBindingTransform{ID: name})

	return b
}

// declare registers the names bound by decl. Syntax declarations are
// evaluated and installed as compile-time transforms, and the reported
// keep is false for them.
func (x *TokenExpander) declare(
	goctx context.Context,
	decl *term.VariableDeclaration,
) (*term.VariableDeclaration, bool, error) {
	out := &term.VariableDeclaration{
		Kind:        decl.Kind,
		Declarators: make([]*term.VariableDeclarator, len(decl.Declarators)),
	}

	for i, d := range decl.Declarators {
		out.Declarators[i] = &term.VariableDeclarator{Binding: x.unuse(d.Binding), Init: d.Init}
	}

	if !out.IsSyntax() {
		for _, d := range out.Declarators {
			for _, name := range term.BoundNames(d.Binding) {
				x.registerVar(name)
			}
		}

		return out, true, nil
	}

	if out.Kind == "syntax" {
		x.nonrec(out)
	}

	for _, d := range out.Declarators {
		bi, ok := d.Binding.(*term.BindingIdentifier)
		if !ok {
			return nil, false, ErrSyntax.Wrapf("syntax declarations must bind a single identifier")
		}

		if err := x.loadSyntax(goctx, bi.Name, d.Init); err != nil {
			return nil, false, err
		}
	}

	return out, false, nil
}

// nonrec keeps a "syntax" initializer from seeing the binding it declares.
// References to the name from the initializer carry an extra scope whose
// binding forwards to the name as seen outside the current scope.
func (x *TokenExpander) nonrec(decl *term.VariableDeclaration) {
	sc := syntax.NewScope(syntax.LabelNonrec)
	bt := x.ctx.Bindings

	for _, d := range decl.Declarators {
		bi, ok := d.Binding.(*term.BindingIdentifier)
		if !ok {
			continue
		}

		name := bi.Name
		added := name.AddScope(sc, bt, syntax.AllPhases)

		removed := name
		if n := len(x.ctx.CurrentScope); n > 0 {
			removed = name.RemoveScope(x.ctx.CurrentScope[n-1], x.ctx.Phase)
		}

		bt.AddForward(added, removed, syntax.Gensym(name.Val()), x.ctx.Phase)

		d.Init = term.MapTerm(d.Init, func(s *syntax.Syntax) *syntax.Syntax {
			return s.AddScope(sc, bt, syntax.AllPhases)
		})
	}
}

// loadSyntax binds name, expands init one phase up, evaluates it, and
// installs the value as a compile-time transform of name.
func (x *TokenExpander) loadSyntax(goctx context.Context, name *syntax.Syntax, init term.Term) error {
	b := x.ctx.Bindings.Add(name, syntax.Gensym(name.Val()), x.ctx.Phase)

	up := x.ctx.Phase + 1

	expanded, err := NewTermExpander(x.ctx.AtPhase(up)).Expand(goctx, init)
	if err != nil {
		return err
	}

	if x.ctx.Evaluator == nil {
		return ErrMacro.Wrapf("no evaluator for syntax declaration %q", name.Val())
	}

	val, err := x.ctx.Evaluator.Eval(goctx, expanded, up)
	if err != nil {
		return ErrMacro.Wrap(err).With(
			slog.String("name", name.Val()),
			slog.Int("line", name.Line()),
		)
	}

	x.ctx.Env.Set(b, CompiletimeTransform{Value: val})

	if x.ctx.Store != nil {
		x.ctx.Store.Set(b.String(), val)
	}

	x.ctx.Logger.Debug("defined macro",
		slog.String("name", name.Val()),
		slog.String("binding", b.String()),
		slog.String("phase", x.ctx.Phase.String()),
	)

	return nil
}

func (x *TokenExpander) declareFunction(f *term.FunctionDeclaration) *term.FunctionDeclaration {
	if f.Name == nil {
		return f
	}

	name, _ := x.unuse(f.Name).(*term.BindingIdentifier)
	x.registerVar(name.Name)

	out := *f
	out.Name = name

	return &out
}

func (x *TokenExpander) declareClass(c *term.ClassDeclaration) *term.ClassDeclaration {
	if c.Name == nil {
		return c
	}

	name, _ := x.unuse(c.Name).(*term.BindingIdentifier)
	x.registerVar(name.Name)

	out := *c
	out.Name = name

	return &out
}

func (x *TokenExpander) importModule(
	goctx context.Context,
	spec *syntax.Syntax,
	forSyntax bool,
) (Module, error) {
	if x.ctx.Importer == nil {
		return nil, ErrSyntax.Wrapf("cannot import %q: no module loader", spec.Val())
	}

	return x.ctx.Importer.Import(goctx, spec.Val(), x.ctx.Path, x.ctx.Phase, forSyntax)
}

// bindImport forwards each imported name to the identifier that declares
// it in the exporting module. The declaration is dropped when it imports a
// compile-time value, since nothing remains to import at run time.
func (x *TokenExpander) bindImport(goctx context.Context, imp *term.Import) (term.Term, bool, error) {
	mod, err := x.importModule(goctx, imp.ModuleSpecifier, imp.ForSyntax)
	if err != nil {
		return nil, false, err
	}

	phase := x.ctx.Phase
	if imp.ForSyntax {
		phase++
	}

	compiletime := false

	bind := func(local *syntax.Syntax, exported string) error {
		decl, ok := mod.ExportedName(exported)
		if !ok {
			return ErrSyntax.Wrapf("module %q does not export %q", imp.ModuleSpecifier.Val(), exported).
				With(slog.Int("line", local.Line()))
		}

		x.ctx.Bindings.AddForward(local, decl, syntax.Gensym(local.Val()), phase)

		b, err := decl.Resolve(phase)
		if err != nil {
			return err
		}

		if _, ok := x.ctx.compiletime(b); ok {
			compiletime = true
		}

		return nil
	}

	if imp.DefaultBinding != nil {
		if err := bind(imp.DefaultBinding.Name, "_default"); err != nil {
			return nil, false, err
		}
	}

	for _, spec := range imp.NamedImports {
		exported := spec.Binding.Name.Val()
		if spec.Name != nil {
			exported = spec.Name.Val()
		}

		if err := bind(spec.Binding.Name, exported); err != nil {
			return nil, false, err
		}
	}

	if compiletime || imp.ForSyntax {
		return nil, false, nil
	}

	return imp, true, nil
}

func (x *TokenExpander) bindNamespace(goctx context.Context, imp *term.ImportNamespace) (term.Term, bool, error) {
	if _, err := x.importModule(goctx, imp.ModuleSpecifier, imp.ForSyntax); err != nil {
		return nil, false, err
	}

	for _, bi := range []*term.BindingIdentifier{imp.DefaultBinding, imp.NamespaceBinding} {
		if bi != nil {
			x.registerVar(bi.Name)
		}
	}

	return imp, !imp.ForSyntax, nil
}

// pragma binds every compile-time export of the language module named by
// a # lang "path" pragma. The "base" language exports nothing.
func (x *TokenExpander) pragma(goctx context.Context, p *term.Pragma) error {
	if p.Kind != "lang" || len(p.Items) == 0 || p.Items[0].Val() == "base" {
		return nil
	}

	spec := p.Items[0]

	mod, err := x.importModule(goctx, spec, false)
	if err != nil {
		return err
	}

	for _, name := range mod.ExportNames() {
		decl, _ := mod.ExportedName(name)

		b, err := decl.Resolve(x.ctx.Phase)
		if err != nil {
			return err
		}

		if _, ok := x.ctx.compiletime(b); !ok {
			continue
		}

		local := syntax.FromIdentifier(name, spec)
		x.ctx.Bindings.AddForward(local, decl, syntax.Gensym(name), x.ctx.Phase)
	}

	x.ctx.Logger.Debug("loaded language",
		slog.String("module", spec.Val()),
		slog.String("phase", x.ctx.Phase.String()),
	)

	return nil
}
