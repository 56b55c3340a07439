package expand

import (
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// enforestExpression parses a comma-separated sequence of expressions.
func (e *Enforester) enforestExpression() (term.Term, error) {
	left, err := e.enforestExpressionLoop()
	if err != nil {
		return nil, err
	}

	for left != nil && isPunctuator(e.peek(0), ",") {
		op := stxOf(e.advance())

		right, err := e.enforestExpressionLoop()
		if err != nil {
			return nil, err
		}

		if right == nil {
			return nil, e.createError(e.peek(0), "expecting an expression")
		}

		left = &term.BinaryExpression{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// enforestExpressionLoop runs the expression productions to a fixpoint.
func (e *Enforester) enforestExpressionLoop() (term.Term, error) {
	e.term = nil
	e.opCtx = opContext{opFrame: opFrame{combine: identity}}

	for {
		t, st, err := e.enforestAssignmentExpression()
		if err != nil {
			return nil, err
		}

		switch {
		case st == stepNoChange && len(e.opCtx.stack) > 0:
			if e.term == nil {
				return nil, e.createError(e.peek(0), "expecting an expression")
			}

			e.term = e.opCtx.combine(e.term)
			e.opCtx.pop()

		case st == stepNoChange:
			return e.term, nil

		case st == stepOperator, st == stepExpansion:
			e.term = nil

		default:
			e.term = t
		}
	}
}

func (e *Enforester) produced(t term.Term, err error) (term.Term, step, error) {
	if err != nil {
		return nil, stepNoChange, err
	}

	return t, stepTerm, nil
}

//nolint:cyclop,funlen,gocyclo
func (e *Enforester) enforestAssignmentExpression() (term.Term, step, error) {
	head := e.peek(0)

	if e.term == nil {
		switch {
		case head == nil:
			return nil, stepNoChange, nil

		case isTerm(head):
			return e.advance().(term.Term), stepTerm, nil //nolint:forcetypeassert

		case e.isCompiletime(head):
			if err := e.expandMacro(); err != nil {
				return nil, stepNoChange, err
			}

			return nil, stepExpansion, nil

		case e.isForm(head, FormYield):
			return e.produced(e.enforestYieldExpression())

		case e.isForm(head, FormClass):
			return e.produced(e.enforestClass(true, false))

		case (isIdentifier(head) || isParens(head)) &&
			isPunctuator(e.peek(1), "=>") && sameLine(head, e.peek(1)):
			return e.produced(e.enforestArrowExpression())

		case stxOf(head).IsSyntaxTemplate():
			return &term.SyntaxTemplate{Template: stxOf(e.advance())}, stepTerm, nil

		case e.isForm(head, FormSyntaxQuote):
			return e.produced(e.enforestSyntaxQuote())

		case isParens(head):
			return &term.ParenthesizedExpression{
				Inner: term.Items(stxOf(e.advance()).Inner()),
			}, stepTerm, nil

		case e.isPrimary(head):
			return e.produced(e.enforestPrimaryExpression())

		case isOperator(head) && term.IsUnaryOperator(stxOf(head).Val()):
			e.enforestUnaryExpression()

			return nil, stepOperator, nil

		case e.isForm(head, FormNew) || isKeyword(head, "super"):
			return e.produced(e.enforestLeftHandSideExpression(true))
		}

		return nil, stepNoChange, nil
	}

	switch {
	case isPunctuator(head, ".") && (isIdentifier(e.peek(1)) || isKeyword(e.peek(1))),
		isBrackets(head), isParens(head):
		return e.produced(e.enforestLeftHandSideExpression(true))

	case isTemplate(head):
		return e.produced(e.enforestTemplateLiteral())

	case isPunctuator(head, "++", "--"):
		op := stxOf(e.advance())

		operand, err := e.transformDestructuring(e.term)
		if err != nil {
			return nil, stepNoChange, err
		}

		return &term.UpdateExpression{Operator: op.Val(), Operand: operand}, stepTerm, nil

	case isOperator(head) && term.IsBinaryOperator(stxOf(head).Val()):
		return e.enforestBinaryExpression()

	case isAssign(head):
		binding, err := e.transformDestructuring(e.term)
		if err != nil {
			return nil, stepNoChange, err
		}

		op := stxOf(e.advance())

		init, err := e.restExpression()
		if err != nil {
			return nil, stepNoChange, err
		}

		if init == nil {
			return nil, stepNoChange, e.createError(e.peek(0), "expecting an expression")
		}

		if op.Val() == "=" {
			return &term.AssignmentExpression{Binding: binding, Expression: init}, stepTerm, nil
		}

		return &term.CompoundAssignmentExpression{
			Binding:    binding,
			Operator:   op.Val(),
			Expression: init,
		}, stepTerm, nil

	case isPunctuator(head, "?"):
		return e.produced(e.enforestConditionalExpression())
	}

	return nil, stepNoChange, nil
}

func isOperator(it term.Item) bool {
	s := stxOf(it)

	return s.IsPunctuator() || s.IsKeyword()
}

func isAssign(it term.Item) bool {
	return isPunctuator(it,
		"=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=",
		"&=", "|=", "^=", "&&=", "||=", "??=")
}

func (e *Enforester) isPrimary(it term.Item) bool {
	s := stxOf(it)

	switch {
	case s == nil:
		return false
	case s.IsIdentifier(), s.IsNumber(), s.IsString(), s.IsTemplate(),
		s.IsBoolean(), s.IsNull(), s.IsRegExp(), s.IsBraces(), s.IsBrackets():
		return true
	default:
		return e.isForm(it, FormThis, FormFunction)
	}
}

//nolint:cyclop
func (e *Enforester) enforestPrimaryExpression() (term.Term, error) {
	head := e.peek(0)
	s := stxOf(head)

	switch {
	case e.isForm(head, FormThis):
		return &term.ThisExpression{Stx: stxOf(e.advance())}, nil

	case e.isForm(head, FormFunction):
		return e.enforestFunction(true, false)

	case s.IsIdentifier():
		return &term.IdentifierExpression{Name: stxOf(e.advance())}, nil

	case s.IsNumber():
		e.advance()

		if f, err := strconv.ParseFloat(strings.ReplaceAll(s.Val(), "_", ""), 64); err == nil && math.IsInf(f, 1) {
			return &term.LiteralInfinityExpression{}, nil
		}

		return &term.LiteralNumericExpression{Value: s}, nil

	case s.IsString():
		return &term.LiteralStringExpression{Value: stxOf(e.advance())}, nil

	case s.IsTemplate():
		elements, err := e.enforestTemplateElements()
		if err != nil {
			return nil, err
		}

		return &term.TemplateExpression{Elements: elements}, nil

	case s.IsBoolean():
		return &term.LiteralBooleanExpression{Value: stxOf(e.advance())}, nil

	case s.IsNull():
		e.advance()

		return &term.LiteralNullExpression{}, nil

	case s.IsRegExp():
		e.advance()

		v := s.Val()

		i := strings.LastIndexByte(v, '/')
		if i < 1 {
			return nil, e.createError(s, "malformed regular expression")
		}

		return &term.LiteralRegExpExpression{Pattern: v[1:i], Flags: v[i+1:]}, nil

	case s.IsBraces():
		return e.enforestObjectExpression()

	case s.IsBrackets():
		return e.enforestArrayExpression()
	}

	return nil, e.createError(head, "not a primary expression")
}

func (e *Enforester) enforestUnaryExpression() {
	op := stxOf(e.advance()).Val()

	e.opCtx.push(term.PrefixPrecedence, func(operand term.Term) term.Term {
		if op == "++" || op == "--" {
			if target, err := e.transformDestructuring(operand); err == nil {
				operand = target
			}

			return &term.UpdateExpression{IsPrefix: true, Operator: op, Operand: operand}
		}

		return &term.UnaryExpression{Operator: op, Operand: operand}
	})
}

func (e *Enforester) enforestBinaryExpression() (term.Term, step, error) {
	left := e.term
	opStx := stxOf(e.peek(0))
	prec, assoc, _ := term.BinaryOperator(opStx.Val())

	if term.OperatorLess(e.opCtx.prec, prec, assoc) {
		e.opCtx.push(prec, func(right term.Term) term.Term {
			return &term.BinaryExpression{Left: left, Operator: opStx, Right: right}
		})
		e.advance()

		return nil, stepOperator, nil
	}

	t := e.opCtx.combine(left)
	e.opCtx.pop()

	return t, stepTerm, nil
}

// enforestConditionalExpression unwinds every pending operator into the
// test, since the conditional operator binds looser than all of them.
func (e *Enforester) enforestConditionalExpression() (term.Term, error) {
	test := e.opCtx.combine(e.term)

	for len(e.opCtx.stack) > 0 {
		e.opCtx.pop()
		test = e.opCtx.combine(test)
	}

	e.opCtx.opFrame = opFrame{combine: identity}

	e.advance()

	cons, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	if _, err := e.matchPunctuator(":"); err != nil {
		return nil, err
	}

	alt, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	if cons == nil || alt == nil {
		return nil, e.createError(e.peek(0), "incomplete conditional expression")
	}

	return &term.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
}

//nolint:cyclop
func (e *Enforester) enforestLeftHandSideExpression(allowCall bool) (term.Term, error) {
	head := e.peek(0)

	switch {
	case e.term == nil && isKeyword(head, "super"):
		e.advance()

		e.term = &term.Super{}

	case e.term == nil && e.isForm(head, FormNew):
		t, err := e.enforestNewExpression()
		if err != nil {
			return nil, err
		}

		e.term = t
	}

	for {
		head = e.peek(0)

		switch {
		case isParens(head):
			if !allowCall {
				if e.term != nil {
					return e.term, nil
				}

				e.term = &term.ParenthesizedExpression{Inner: term.Items(stxOf(e.advance()).Inner())}

				continue
			}

			inner := stxOf(e.advance()).Inner()
			e.term = &term.CallExpression{Callee: e.term, Arguments: term.Items(inner)}

		case isBrackets(head) && e.term != nil:
			inner := stxOf(e.advance()).Inner()
			sub := e.subSyntax(inner)

			expr, err := sub.enforestExpression()
			if err != nil {
				return nil, err
			}

			if err := sub.expectDone(); err != nil {
				return nil, err
			}

			e.term = &term.ComputedMemberExpression{Object: e.term, Expression: expr}

		case isPunctuator(head, ".") && (isIdentifier(e.peek(1)) || isKeyword(e.peek(1))) && e.term != nil:
			e.advance()

			e.term = &term.StaticMemberExpression{Object: e.term, Property: stxOf(e.advance())}

		case isTemplate(head) && e.term != nil:
			t, err := e.enforestTemplateLiteral()
			if err != nil {
				return nil, err
			}

			e.term = t

		case e.term == nil && e.isPrimary(head):
			t, err := e.enforestPrimaryExpression()
			if err != nil {
				return nil, err
			}

			e.term = t

		default:
			if e.term == nil {
				return nil, e.createError(head, "expecting an expression")
			}

			return e.term, nil
		}
	}
}

func (e *Enforester) enforestNewExpression() (term.Term, error) {
	e.advance()

	if isPunctuator(e.peek(0), ".") && isIdentifier(e.peek(1), "target") {
		e.advance()
		e.advance()

		return &term.NewTargetExpression{}, nil
	}

	saved := e.term
	e.term = nil

	callee, err := e.enforestLeftHandSideExpression(false)
	if err != nil {
		return nil, err
	}

	e.term = saved

	var args []term.Item

	if isParens(e.peek(0)) {
		args = term.Items(stxOf(e.advance()).Inner())
	}

	return &term.NewExpression{Callee: callee, Arguments: args}, nil
}

func (e *Enforester) enforestTemplateLiteral() (term.Term, error) {
	tag := e.term

	elements, err := e.enforestTemplateElements()
	if err != nil {
		return nil, err
	}

	return &term.TemplateExpression{Tag: tag, Elements: elements}, nil
}

func (e *Enforester) enforestTemplateElements() ([]term.Term, error) {
	tmpl := stxOf(e.advance())
	if !tmpl.IsTemplate() {
		return nil, e.createError(tmpl, "expecting a template literal")
	}

	elements := make([]term.Term, 0, len(tmpl.Parts()))

	for _, p := range tmpl.Parts() {
		if p.Expr == nil {
			elements = append(elements, &term.TemplateElement{RawValue: p.Text})

			continue
		}

		sub := e.subSyntax(p.Expr.Inner())

		expr, err := sub.enforestExpression()
		if err != nil {
			return nil, err
		}

		if expr == nil {
			return nil, e.createError(p.Expr, "empty template interpolation")
		}

		if err := sub.expectDone(); err != nil {
			return nil, err
		}

		elements = append(elements, expr)
	}

	return elements, nil
}

func (e *Enforester) enforestSyntaxQuote() (term.Term, error) {
	name := stxOf(e.advance())

	if !isTemplate(e.peek(0)) {
		return nil, e.createError(e.peek(0), "expecting a template after syntaxQuote")
	}

	elements, err := e.enforestTemplateElements()
	if err != nil {
		return nil, err
	}

	return &term.SyntaxQuote{
		Name: name,
		Template: &term.TemplateExpression{
			Tag:      &term.IdentifierExpression{Name: name},
			Elements: elements,
		},
	}, nil
}

func (e *Enforester) enforestObjectExpression() (term.Term, error) {
	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	var props []term.Term

	for !enf.Done() {
		before := len(enf.rest)

		p, err := enf.enforestPropertyDefinition()
		if err != nil {
			return nil, err
		}

		enf.consumeComma()

		if len(enf.rest) == before {
			return nil, enf.createError(enf.peek(0), "invalid syntax in object")
		}

		props = append(props, p)
	}

	return &term.ObjectExpression{Properties: props}, nil
}

func (e *Enforester) enforestPropertyDefinition() (term.Term, error) {
	head := e.peek(0)

	if isPunctuator(head, "...") {
		e.advance()

		expr, err := e.restExpression()
		if err != nil {
			return nil, err
		}

		return &term.SpreadElement{Expression: expr}, nil
	}

	key, isMethod, err := e.enforestMethodDefinition()
	if err != nil {
		return nil, err
	}

	if isMethod {
		return key, nil
	}

	if name, ok := key.(*term.StaticPropertyName); ok && (isIdentifier(head) || isKeyword(head)) {
		if isPunctuator(e.peek(0), "=") {
			e.advance()

			init, err := e.restExpression()
			if err != nil {
				return nil, err
			}

			return &term.BindingPropertyIdentifier{
				Binding: &term.BindingIdentifier{Name: name.Value},
				Init:    init,
			}, nil
		}

		if !isPunctuator(e.peek(0), ":") {
			return &term.ShorthandProperty{Name: name.Value}, nil
		}
	}

	if _, err := e.matchPunctuator(":"); err != nil {
		return nil, err
	}

	expr, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	return &term.DataProperty{Name: key, Expression: expr}, nil
}

// enforestMethodDefinition parses a method, getter, or setter, or else just
// a property name. The boolean result reports whether a method was parsed.
//
//nolint:cyclop,funlen
func (e *Enforester) enforestMethodDefinition() (term.Term, bool, error) {
	generator := false

	if isPunctuator(e.peek(0), "*") {
		e.advance()

		generator = true
	}

	head := e.peek(0)

	if isIdentifier(head, "get", "set") && isPropertyName(e.peek(1)) {
		e.advance()

		name, err := e.enforestPropertyName()
		if err != nil {
			return nil, false, err
		}

		params, err := e.matchParens()
		if err != nil {
			return nil, false, err
		}

		body, err := e.matchCurlies()
		if err != nil {
			return nil, false, err
		}

		fb := &term.FunctionBody{Statements: term.Items(body)}

		if stxOf(head).Val() == "get" {
			return &term.Getter{Name: name, Body: fb}, true, nil
		}

		enf := e.subSyntax(params)

		param, err := enf.enforestBindingElement()
		if err != nil {
			return nil, false, err
		}

		if err := enf.expectDone(); err != nil {
			return nil, false, err
		}

		return &term.Setter{Name: name, Param: param, Body: fb}, true, nil
	}

	name, err := e.enforestPropertyName()
	if err != nil {
		return nil, false, err
	}

	if !isParens(e.peek(0)) {
		if generator {
			return nil, false, e.createError(e.peek(0), "expecting method parameters")
		}

		return name, false, nil
	}

	inner, _ := e.matchParens()

	params, err := e.subSyntax(inner).enforestFormalParameters()
	if err != nil {
		return nil, false, err
	}

	body, err := e.matchCurlies()
	if err != nil {
		return nil, false, err
	}

	return &term.Method{
		Name:        name,
		IsGenerator: generator,
		Params:      params,
		Body:        &term.FunctionBody{Statements: term.Items(body)},
	}, true, nil
}

func isPropertyName(it term.Item) bool {
	s := stxOf(it)

	return s.IsIdentifier() || s.IsKeyword() || s.IsString() || s.IsNumber() ||
		s.IsBoolean() || s.IsNull() || s.IsBrackets()
}

func (e *Enforester) enforestPropertyName() (term.Term, error) {
	head := e.peek(0)

	if isBrackets(head) {
		sub := e.subSyntax(stxOf(e.advance()).Inner())

		expr, err := sub.enforestExpression()
		if err != nil {
			return nil, err
		}

		if err := sub.expectDone(); err != nil {
			return nil, err
		}

		return &term.ComputedPropertyName{Expression: expr}, nil
	}

	if !isPropertyName(head) {
		return nil, e.createError(head, "expecting a property name")
	}

	return &term.StaticPropertyName{Value: stxOf(e.advance())}, nil
}

func (e *Enforester) enforestArrayExpression() (term.Term, error) {
	inner, err := e.matchSquares()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	var elements []term.Term

	for !enf.Done() {
		head := enf.peek(0)

		switch {
		case isPunctuator(head, ","):
			enf.advance()

			elements = append(elements, nil)

		case isPunctuator(head, "..."):
			enf.advance()

			expr, err := enf.restExpression()
			if err != nil {
				return nil, err
			}

			elements = append(elements, &term.SpreadElement{Expression: expr})
			enf.consumeComma()

		default:
			expr, err := enf.restExpression()
			if err != nil {
				return nil, err
			}

			if expr == nil {
				return nil, enf.createError(head, "unexpected syntax in array")
			}

			elements = append(elements, expr)
			enf.consumeComma()
		}
	}

	return &term.ArrayExpression{Elements: elements}, nil
}

func (e *Enforester) enforestArrowExpression() (term.Term, error) {
	var enf *Enforester

	if isIdentifier(e.peek(0)) {
		enf = e.sub([]term.Item{e.advance()})
	} else {
		inner, _ := e.matchParens()
		enf = e.subSyntax(inner)
	}

	params, err := enf.enforestFormalParameters()
	if err != nil {
		return nil, err
	}

	if _, err := e.matchPunctuator("=>"); err != nil {
		return nil, err
	}

	if isBraces(e.peek(0)) {
		body, _ := e.matchCurlies()

		return &term.ArrowExpression{
			Params: params,
			Body:   &term.FunctionBody{Statements: term.Items(body)},
		}, nil
	}

	body, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	if body == nil {
		return nil, e.createError(e.peek(0), "expecting an arrow function body")
	}

	return &term.ArrowExpression{Params: params, Body: body}, nil
}

func (e *Enforester) enforestYieldExpression() (term.Term, error) {
	kw := e.advance()

	next := e.peek(0)
	if next == nil || !sameLine(kw, next) || isPunctuator(next, ";", ",", ")", "]", "}", ":") {
		return &term.YieldExpression{}, nil
	}

	delegate := false

	if isPunctuator(next, "*") {
		e.advance()

		delegate = true
	}

	expr, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	if delegate {
		return &term.YieldGeneratorExpression{Expression: expr}, nil
	}

	return &term.YieldExpression{Expression: expr}, nil
}

// enforestClass parses a class declaration or expression. An unnamed class
// in an export default declaration is named _default.
//
//nolint:cyclop,funlen
func (e *Enforester) enforestClass(isExpr, inDefault bool) (term.Term, error) {
	kw := stxOf(e.advance())

	var (
		name  *term.BindingIdentifier
		super term.Term
		err   error
	)

	switch head := e.peek(0); {
	case isIdentifier(head):
		if name, err = e.enforestBindingIdentifier(); err != nil {
			return nil, err
		}

	case inDefault:
		name = &term.BindingIdentifier{Name: syntax.FromIdentifier("_default", kw)}

	case !isExpr:
		return nil, e.createError(head, "expecting a class name")
	}

	if isKeyword(e.peek(0), "extends") {
		e.advance()

		sub := e.sub(e.rest)

		if super, err = sub.enforestLeftHandSideExpression(true); err != nil {
			return nil, err
		}

		e.rest = sub.rest
	}

	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	var elements []*term.ClassElement

	for !enf.Done() {
		if isPunctuator(enf.peek(0), ";") {
			enf.advance()

			continue
		}

		static := false

		if isIdentifier(enf.peek(0), "static") && !isParens(enf.peek(1)) {
			enf.advance()

			static = true
		}

		m, isMethod, err := enf.enforestMethodDefinition()
		if err != nil {
			return nil, err
		}

		if !isMethod {
			return nil, enf.createError(enf.peek(0), "only methods are allowed in classes")
		}

		elements = append(elements, &term.ClassElement{IsStatic: static, Method: m})
	}

	if isExpr {
		return &term.ClassExpression{Name: name, Super: super, Elements: elements}, nil
	}

	return &term.ClassDeclaration{Name: name, Super: super, Elements: elements}, nil
}

// enforestFunction parses a function declaration or expression. An unnamed
// function in an export default declaration is named _default.
func (e *Enforester) enforestFunction(isExpr, inDefault bool) (term.Term, error) {
	kw := stxOf(e.advance())

	generator := false

	if isPunctuator(e.peek(0), "*") {
		e.advance()

		generator = true
	}

	var (
		name *term.BindingIdentifier
		err  error
	)

	switch head := e.peek(0); {
	case isIdentifier(head) || isKeyword(head, "yield"):
		if name, err = e.enforestBindingIdentifier(); err != nil {
			return nil, err
		}

	case inDefault:
		name = &term.BindingIdentifier{Name: syntax.FromIdentifier("_default", kw)}

	case !isExpr:
		return nil, e.createError(head, "expecting a function name")
	}

	inner, err := e.matchParens()
	if err != nil {
		return nil, err
	}

	params, err := e.subSyntax(inner).enforestFormalParameters()
	if err != nil {
		return nil, err
	}

	body, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	fb := &term.FunctionBody{Statements: term.Items(body)}

	if isExpr {
		return &term.FunctionExpression{
			Name: name, IsGenerator: generator, Params: params, Body: fb,
		}, nil
	}

	return &term.FunctionDeclaration{
		Name: name, IsGenerator: generator, Params: params, Body: fb,
	}, nil
}
