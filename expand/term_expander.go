package expand

import (
	"context"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// TermExpander expands the children of enforested terms: it enforests raw
// tokens left inside them, compiles function bodies in a fresh scope, and
// lowers syntax templates and quotes into ordinary calls.
type TermExpander struct {
	ctx *Context
}

// NewTermExpander returns a term expander over ctx.
func NewTermExpander(ctx *Context) *TermExpander { return &TermExpander{ctx: ctx} }

// Expand returns the fully expanded form of t.
func (x *TermExpander) Expand(goctx context.Context, t term.Term) (term.Term, error) {
	r := &expansion{x: x, goctx: goctx}

	out := r.term(t)
	if r.err != nil {
		return nil, r.err
	}

	return out, nil
}

// expansion carries the first error of a recursive expansion so that the
// traversal can read like a plain tree copy.
type expansion struct {
	x     *TermExpander
	goctx context.Context
	err   error
}

func (r *expansion) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *expansion) terms(ts []term.Term) []term.Term {
	if ts == nil {
		return nil
	}

	out := make([]term.Term, len(ts))
	for i, t := range ts {
		out[i] = r.term(t)
	}

	return out
}

func (r *expansion) cases(cs []*term.SwitchCase) []*term.SwitchCase {
	out := make([]*term.SwitchCase, len(cs))
	for i, c := range cs {
		out[i] = &term.SwitchCase{Test: r.term(c.Test), Consequent: r.terms(c.Consequent)}
	}

	return out
}

func (r *expansion) block(b *term.Block) *term.Block {
	if b == nil || r.err != nil {
		return b
	}

	out, err := r.x.expandBlock(r.goctx, b)
	r.fail(err)

	return out
}

func (r *expansion) catchClause(c *term.CatchClause) *term.CatchClause {
	if c == nil {
		return nil
	}

	return &term.CatchClause{Binding: r.term(c.Binding), Body: r.block(c.Body)}
}

func (r *expansion) elements(es []*term.ClassElement) []*term.ClassElement {
	out := make([]*term.ClassElement, len(es))
	for i, el := range es {
		out[i] = &term.ClassElement{IsStatic: el.IsStatic, Method: r.term(el.Method)}
	}

	return out
}

func (r *expansion) arguments(items []term.Item) []term.Item {
	if r.err != nil {
		return items
	}

	args, err := r.x.enforestArguments(items)
	if err != nil {
		r.fail(err)

		return items
	}

	out := make([]term.Item, len(args))
	for i, a := range args {
		out[i] = r.term(a)
	}

	return out
}

func (r *expansion) function(
	params *term.FormalParameters,
	body term.Term,
) (*term.FormalParameters, term.Term) {
	if r.err != nil {
		return params, body
	}

	p, b, err := r.x.expandFunction(r.goctx, params, body)
	if err != nil {
		r.fail(err)

		return params, body
	}

	return p, b
}

//nolint:cyclop,funlen,gocognit,gocyclo,maintidx
func (r *expansion) term(t term.Term) term.Term {
	if t == nil || r.err != nil {
		return t
	}

	x := r.x

	switch t := t.(type) {
	case *term.Module:
		return &term.Module{Items: r.terms(t.Items)}

	case *term.Export:
		return &term.Export{Declaration: r.term(t.Declaration)}

	case *term.ExportDefault:
		return &term.ExportDefault{Body: r.term(t.Body)}

	case *term.BlockStatement:
		return &term.BlockStatement{Block: r.block(t.Block)}

	case *term.Block:
		return r.block(t)

	case *term.WhileStatement:
		return &term.WhileStatement{Test: r.term(t.Test), Body: r.term(t.Body)}

	case *term.IfStatement:
		return &term.IfStatement{
			Test:       r.term(t.Test),
			Consequent: r.term(t.Consequent),
			Alternate:  r.term(t.Alternate),
		}

	case *term.ForStatement:
		return &term.ForStatement{
			Init:   r.term(t.Init),
			Test:   r.term(t.Test),
			Update: r.term(t.Update),
			Body:   r.term(t.Body),
		}

	case *term.ForInStatement:
		return &term.ForInStatement{Left: r.term(t.Left), Right: r.term(t.Right), Body: r.term(t.Body)}

	case *term.ForOfStatement:
		return &term.ForOfStatement{Left: r.term(t.Left), Right: r.term(t.Right), Body: r.term(t.Body)}

	case *term.SwitchStatement:
		return &term.SwitchStatement{Discriminant: r.term(t.Discriminant), Cases: r.cases(t.Cases)}

	case *term.SwitchStatementWithDefault:
		return &term.SwitchStatementWithDefault{
			Discriminant:     r.term(t.Discriminant),
			PreDefaultCases:  r.cases(t.PreDefaultCases),
			DefaultCase:      &term.SwitchDefault{Consequent: r.terms(t.DefaultCase.Consequent)},
			PostDefaultCases: r.cases(t.PostDefaultCases),
		}

	case *term.DoWhileStatement:
		return &term.DoWhileStatement{Body: r.term(t.Body), Test: r.term(t.Test)}

	case *term.WithStatement:
		return &term.WithStatement{Object: r.term(t.Object), Body: r.term(t.Body)}

	case *term.TryCatchStatement:
		return &term.TryCatchStatement{Body: r.block(t.Body), CatchClause: r.catchClause(t.CatchClause)}

	case *term.TryFinallyStatement:
		return &term.TryFinallyStatement{
			Body:        r.block(t.Body),
			CatchClause: r.catchClause(t.CatchClause),
			Finalizer:   r.block(t.Finalizer),
		}

	case *term.CatchClause:
		return r.catchClause(t)

	case *term.ThrowStatement:
		return &term.ThrowStatement{Expression: r.term(t.Expression)}

	case *term.ReturnStatement:
		return &term.ReturnStatement{Expression: r.term(t.Expression)}

	case *term.ExpressionStatement:
		return &term.ExpressionStatement{Expression: r.term(t.Expression)}

	case *term.LabeledStatement:
		return &term.LabeledStatement{Label: t.Label, Body: r.term(t.Body)}

	case *term.VariableDeclarationStatement:
		decl, _ := r.term(t.Declaration).(*term.VariableDeclaration)

		return &term.VariableDeclarationStatement{Declaration: decl}

	case *term.VariableDeclaration:
		out := &term.VariableDeclaration{Kind: t.Kind, Declarators: make([]*term.VariableDeclarator, len(t.Declarators))}
		for i, d := range t.Declarators {
			out.Declarators[i] = &term.VariableDeclarator{Binding: r.term(d.Binding), Init: r.term(d.Init)}
		}

		return out

	case *term.FunctionDeclaration:
		params, body := r.function(t.Params, t.Body)

		return &term.FunctionDeclaration{
			Name: t.Name, IsGenerator: t.IsGenerator, Params: params, Body: functionBody(body),
		}

	case *term.FunctionExpression:
		params, body := r.function(t.Params, t.Body)

		return &term.FunctionExpression{
			Name: t.Name, IsGenerator: t.IsGenerator, Params: params, Body: functionBody(body),
		}

	case *term.ArrowExpression:
		params, body := r.function(t.Params, t.Body)

		return &term.ArrowExpression{Params: params, Body: body}

	case *term.Method:
		name := r.term(t.Name)
		params, body := r.function(t.Params, t.Body)

		return &term.Method{Name: name, IsGenerator: t.IsGenerator, Params: params, Body: functionBody(body)}

	case *term.Getter:
		name := r.term(t.Name)
		_, body := r.function(nil, t.Body)

		return &term.Getter{Name: name, Body: functionBody(body)}

	case *term.Setter:
		name := r.term(t.Name)
		params, body := r.function(&term.FormalParameters{Items: []term.Term{t.Param}}, t.Body)

		return &term.Setter{Name: name, Param: params.Items[0], Body: functionBody(body)}

	case *term.ClassDeclaration:
		return &term.ClassDeclaration{Name: t.Name, Super: r.term(t.Super), Elements: r.elements(t.Elements)}

	case *term.ClassExpression:
		return &term.ClassExpression{Name: t.Name, Super: r.term(t.Super), Elements: r.elements(t.Elements)}

	case *term.ClassElement:
		return &term.ClassElement{IsStatic: t.IsStatic, Method: r.term(t.Method)}

	case *term.DataProperty:
		return &term.DataProperty{Name: r.term(t.Name), Expression: r.term(t.Expression)}

	case *term.ComputedPropertyName:
		return &term.ComputedPropertyName{Expression: r.term(t.Expression)}

	case *term.ObjectExpression:
		return &term.ObjectExpression{Properties: r.terms(t.Properties)}

	case *term.ArrayExpression:
		return &term.ArrayExpression{Elements: r.terms(t.Elements)}

	case *term.SpreadElement:
		return &term.SpreadElement{Expression: r.term(t.Expression)}

	case *term.IdentifierExpression:
		tr, err := x.ctx.resolve(t.Name)
		if err != nil {
			r.fail(err)

			return t
		}

		if vb, ok := tr.(VarBindingTransform); ok && vb.ID != nil {
			return &term.IdentifierExpression{Name: vb.ID}
		}

		return t

	case *term.TemplateExpression:
		return &term.TemplateExpression{Tag: r.term(t.Tag), Elements: r.terms(t.Elements)}

	case *term.ParenthesizedExpression:
		if r.err != nil {
			return t
		}

		inner, err := x.enforestParenthesized(t)
		if err != nil {
			r.fail(err)

			return t
		}

		return &term.ParenthesizedExpression{Inner: []term.Item{r.term(inner)}}

	case *term.UnaryExpression:
		return &term.UnaryExpression{Operator: t.Operator, Operand: r.term(t.Operand)}

	case *term.UpdateExpression:
		return &term.UpdateExpression{IsPrefix: t.IsPrefix, Operator: t.Operator, Operand: r.term(t.Operand)}

	case *term.BinaryExpression:
		return &term.BinaryExpression{Left: r.term(t.Left), Operator: t.Operator, Right: r.term(t.Right)}

	case *term.ConditionalExpression:
		return &term.ConditionalExpression{
			Test:       r.term(t.Test),
			Consequent: r.term(t.Consequent),
			Alternate:  r.term(t.Alternate),
		}

	case *term.AssignmentExpression:
		return &term.AssignmentExpression{Binding: r.term(t.Binding), Expression: r.term(t.Expression)}

	case *term.CompoundAssignmentExpression:
		return &term.CompoundAssignmentExpression{
			Binding:    r.term(t.Binding),
			Operator:   t.Operator,
			Expression: r.term(t.Expression),
		}

	case *term.StaticMemberExpression:
		return &term.StaticMemberExpression{Object: r.term(t.Object), Property: t.Property}

	case *term.ComputedMemberExpression:
		return &term.ComputedMemberExpression{Object: r.term(t.Object), Expression: r.term(t.Expression)}

	case *term.CallExpression:
		return &term.CallExpression{Callee: r.term(t.Callee), Arguments: r.arguments(t.Arguments)}

	case *term.NewExpression:
		return &term.NewExpression{Callee: r.term(t.Callee), Arguments: r.arguments(t.Arguments)}

	case *term.YieldExpression:
		return &term.YieldExpression{Expression: r.term(t.Expression)}

	case *term.YieldGeneratorExpression:
		return &term.YieldGeneratorExpression{Expression: r.term(t.Expression)}

	case *term.SyntaxTemplate:
		out, err := x.lowerSyntaxTemplate(t)
		if err != nil {
			r.fail(err)

			return t
		}

		return r.term(out)

	case *term.SyntaxQuote:
		out, err := x.lowerSyntaxQuote(t)
		if err != nil {
			r.fail(err)

			return t
		}

		return r.term(out)

	case *term.BindingWithDefault:
		return &term.BindingWithDefault{Binding: r.term(t.Binding), Init: r.term(t.Init)}

	case *term.ArrayBinding:
		return &term.ArrayBinding{Elements: r.terms(t.Elements), RestElement: r.term(t.RestElement)}

	case *term.ObjectBinding:
		return &term.ObjectBinding{Properties: r.terms(t.Properties)}

	case *term.BindingPropertyIdentifier:
		return &term.BindingPropertyIdentifier{Binding: t.Binding, Init: r.term(t.Init)}

	case *term.BindingPropertyProperty:
		return &term.BindingPropertyProperty{Name: r.term(t.Name), Binding: r.term(t.Binding)}

	default:
		return t
	}
}

func functionBody(t term.Term) *term.FunctionBody {
	fb, _ := t.(*term.FunctionBody)

	return fb
}

// expandBlock compiles the raw statements of b in a fresh block scope.
func (x *TermExpander) expandBlock(goctx context.Context, b *term.Block) (*term.Block, error) {
	sc := syntax.NewScope(syntax.LabelBlock)
	bt := x.ctx.Bindings

	items := make([]term.Item, len(b.Statements))
	for i, it := range b.Statements {
		items[i] = term.AddScope(it, sc, bt, syntax.AllPhases)
	}

	x.ctx.pushScope(sc)
	defer x.ctx.popScope()

	stmts, err := NewCompiler(x.ctx).Compile(goctx, items)
	if err != nil {
		return nil, err
	}

	return &term.Block{Statements: termsToItems(stmts)}, nil
}

// expandFunction binds the parameters in a fresh function scope and
// compiles the body with that scope in effect. A body that is an
// expression is expanded directly.
func (x *TermExpander) expandFunction(
	goctx context.Context,
	params *term.FormalParameters,
	body term.Term,
) (*term.FormalParameters, term.Term, error) {
	sc := syntax.NewScope(syntax.LabelFunction)
	bt := x.ctx.Bindings

	if params != nil {
		params = term.MapTerm(params, func(s *syntax.Syntax) *syntax.Syntax {
			return s.AddScope(sc, bt, syntax.AllPhases)
		}).(*term.FormalParameters) //nolint:forcetypeassert

		for _, p := range append(append([]term.Term(nil), params.Items...), params.Rest) {
			for _, name := range term.BoundNames(p) {
				x.registerVar(name)
			}
		}

		r := &expansion{x: x, goctx: goctx}
		items := r.terms(params.Items)
		rest := r.term(params.Rest)

		if r.err != nil {
			return nil, nil, r.err
		}

		params = &term.FormalParameters{Items: items, Rest: rest}
	}

	x.ctx.pushScope(sc)
	defer x.ctx.popScope()

	if fb, ok := body.(*term.FunctionBody); ok {
		items := make([]term.Item, len(fb.Statements))
		for i, it := range fb.Statements {
			items[i] = term.AddScope(it, sc, bt, syntax.AllPhases)
		}

		stmts, err := NewCompiler(x.ctx).Compile(goctx, items)
		if err != nil {
			return nil, nil, err
		}

		return params, &term.FunctionBody{Statements: termsToItems(stmts)}, nil
	}

	out, err := x.Expand(goctx, term.MapTerm(body, func(s *syntax.Syntax) *syntax.Syntax {
		return s.AddScope(sc, bt, syntax.AllPhases)
	}))

	return params, out, err
}

// registerVar allocates a fresh binding for name and binds it to a
// variable transform.
func (x *TermExpander) registerVar(name *syntax.Syntax) {
	b := x.ctx.Bindings.Add(name, syntax.Gensym(name.Val()), x.ctx.Phase)
	x.ctx.Env.Set(b, VarBindingTransform{ID: name})
}

func (x *TermExpander) enforestParenthesized(t *term.ParenthesizedExpression) (term.Term, error) {
	enf := NewEnforester(t.Inner, x.ctx)
	head := enf.peek(0)

	inner, err := enf.enforestExpression()
	if err == nil {
		err = *enf.errp
	}

	if err != nil {
		return nil, err
	}

	if inner == nil || !enf.Done() {
		return nil, enf.createError(head, "unexpected syntax")
	}

	return inner, nil
}

// enforestArguments parses a raw argument list. Arguments that are already
// terms need no separating comma.
func (x *TermExpander) enforestArguments(items []term.Item) ([]term.Term, error) {
	enf := NewEnforester(items, x.ctx)

	var args []term.Term

	for !enf.Done() {
		parsed := isTerm(enf.peek(0))

		if isPunctuator(enf.peek(0), "...") {
			enf.advance()

			expr, err := enf.restExpression()
			if err != nil {
				return nil, err
			}

			args = append(args, &term.SpreadElement{Expression: expr})
		} else {
			head := enf.peek(0)

			expr, err := enf.restExpression()
			if err != nil {
				return nil, err
			}

			if expr == nil {
				return nil, enf.createError(head, "expecting an argument")
			}

			args = append(args, expr)
		}

		switch {
		case isPunctuator(enf.peek(0), ","):
			enf.advance()

		case !enf.Done() && !parsed:
			return nil, enf.createError(enf.peek(0), "expecting a comma")
		}
	}

	return args, *enf.errp
}

// lowerSyntaxTemplate rewrites #`...` into a call to syntaxTemplate with the
// serialized skeleton followed by each interpolated expression.
func (x *TermExpander) lowerSyntaxTemplate(t *term.SyntaxTemplate) (term.Term, error) {
	skeleton, interps := ProcessTemplate(t.Template.Inner())

	src, err := syntax.Marshal(skeleton)
	if err != nil {
		return nil, err
	}

	args := []term.Item{&term.LiteralStringExpression{Value: syntax.FromString(src, nil)}}

	for _, in := range interps {
		enf := NewEnforester(term.Items(in), x.ctx)

		expr, err := enf.enforestExpression()
		if err == nil {
			err = *enf.errp
		}

		if err != nil {
			return nil, err
		}

		if expr == nil || !enf.Done() {
			return nil, enf.createError(enf.peek(0), "invalid syntax template interpolation")
		}

		args = append(args, expr)
	}

	return &term.CallExpression{
		Callee:    &term.IdentifierExpression{Name: syntax.FromIdentifier("syntaxTemplate", nil)},
		Arguments: args,
	}, nil
}

// lowerSyntaxQuote appends the serialized lexical context of the quote to
// its template so the tag can rebuild the quoted tokens.
func (x *TermExpander) lowerSyntaxQuote(t *term.SyntaxQuote) (term.Term, error) {
	ctx, err := syntax.Marshal([]*syntax.Syntax{t.Name})
	if err != nil {
		return nil, err
	}

	elements := append(append([]term.Term(nil), t.Template.Elements...),
		&term.LiteralStringExpression{Value: syntax.FromString(ctx, nil)},
		&term.TemplateElement{},
	)

	return &term.TemplateExpression{
		Tag:      &term.IdentifierExpression{Name: syntax.FromIdentifier("syntaxQuote", nil)},
		Elements: elements,
	}, nil
}

func termsToItems(ts []term.Term) []term.Item {
	out := make([]term.Item, len(ts))
	for i, t := range ts {
		out[i] = t
	}

	return out
}
