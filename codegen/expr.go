package codegen

import (
	"strconv"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Expression precedence levels, lowest first. Binary operators occupy
// precConditional+1 through precConditional+11.
const (
	precSequence    = 0
	precAssignment  = 1
	precConditional = 2
	precUnary       = precConditional + term.PrefixPrecedence
	precPostfix     = precUnary + 1
	precCall        = precPostfix + 1
	precPrimary     = precCall + 1
)

func precedence(t term.Term) int {
	switch t := t.(type) {
	case *term.BinaryExpression:
		if t.Operator.Val() == "," {
			return precSequence
		}

		p, _, _ := term.BinaryOperator(t.Operator.Val())

		return precConditional + p

	case *term.AssignmentExpression, *term.CompoundAssignmentExpression,
		*term.ArrowExpression, *term.YieldExpression,
		*term.YieldGeneratorExpression, *term.SpreadElement:
		return precAssignment

	case *term.ConditionalExpression:
		return precConditional

	case *term.UnaryExpression:
		return precUnary

	case *term.UpdateExpression:
		if t.IsPrefix {
			return precUnary
		}

		return precPostfix

	case *term.CallExpression, *term.NewExpression,
		*term.StaticMemberExpression, *term.ComputedMemberExpression:
		return precCall

	case *term.TemplateExpression:
		if t.Tag != nil {
			return precCall
		}

		return precPrimary

	default:
		return precPrimary
	}
}

// startsAmbiguous reports whether an expression statement would begin with
// a token that reads as a declaration or block.
func startsAmbiguous(t term.Term) bool {
	for {
		switch e := t.(type) {
		case *term.ObjectExpression, *term.FunctionExpression,
			*term.ClassExpression, *term.ObjectBinding:
			return true
		case *term.BinaryExpression:
			t = e.Left
		case *term.CallExpression:
			t = e.Callee
		case *term.StaticMemberExpression:
			t = e.Object
		case *term.ComputedMemberExpression:
			t = e.Object
		case *term.ConditionalExpression:
			t = e.Test
		case *term.AssignmentExpression:
			t = e.Binding
		case *term.CompoundAssignmentExpression:
			t = e.Binding
		case *term.TemplateExpression:
			if e.Tag == nil {
				return false
			}

			t = e.Tag
		case *term.UpdateExpression:
			if e.IsPrefix {
				return false
			}

			t = e.Operand
		default:
			return false
		}
	}
}

// expr writes t, parenthesized when it binds looser than minPrec.
func (g *generator) expr(t term.Term, minPrec int) {
	if t == nil {
		return
	}

	if precedence(t) < minPrec {
		g.write("(")
		g.exprInner(t)
		g.write(")")

		return
	}

	g.exprInner(t)
}

//nolint:cyclop,funlen,gocyclo,maintidx
func (g *generator) exprInner(t term.Term) {
	switch t := t.(type) {
	case *term.IdentifierExpression:
		g.ident(t.Name)

	case *term.ThisExpression:
		g.write("this")

	case *term.Super:
		g.write("super")

	case *term.NewTargetExpression:
		g.write("new.target")

	case *term.LiteralNumericExpression:
		g.write(t.Value.Val())

	case *term.LiteralInfinityExpression:
		g.write("Infinity")

	case *term.LiteralStringExpression:
		g.write(t.Value.String())

	case *term.LiteralBooleanExpression:
		g.write(t.Value.Val())

	case *term.LiteralNullExpression:
		g.write("null")

	case *term.LiteralRegExpExpression:
		g.write("/", t.Pattern, "/", t.Flags)

	case *term.TemplateExpression:
		g.template(t)

	case *term.ParenthesizedExpression:
		g.write("(")

		if v, ok := soleTerm(t.Inner); ok {
			g.expr(v, precSequence)
		} else {
			g.arguments(t.Inner)
		}

		g.write(")")

	case *term.ArrayExpression:
		g.write("[")

		for i, el := range t.Elements {
			if i > 0 {
				g.write(", ")
			}

			g.expr(el, precAssignment)
		}

		if n := len(t.Elements); n > 0 && t.Elements[n-1] == nil {
			g.write(",")
		}

		g.write("]")

	case *term.ObjectExpression:
		if len(t.Properties) == 0 {
			g.write("{}")

			return
		}

		g.write("{")

		for i, p := range t.Properties {
			if i > 0 {
				g.write(", ")
			}

			g.property(p)
		}

		g.write("}")

	case *term.SpreadElement:
		g.write("...")
		g.expr(t.Expression, precAssignment)

	case *term.UnaryExpression:
		g.write(t.Operator)

		if needsSpace(t.Operator, t.Operand) {
			g.write(" ")
		}

		g.expr(t.Operand, precUnary)

	case *term.UpdateExpression:
		if t.IsPrefix {
			g.write(t.Operator)
			g.pattern(t.Operand)
		} else {
			g.pattern(t.Operand)
			g.write(t.Operator)
		}

	case *term.BinaryExpression:
		g.binary(t)

	case *term.ConditionalExpression:
		g.expr(t.Test, precConditional+1)
		g.write(" ? ")
		g.expr(t.Consequent, precAssignment)
		g.write(" : ")
		g.expr(t.Alternate, precAssignment)

	case *term.AssignmentExpression:
		g.pattern(t.Binding)
		g.write(" = ")
		g.expr(t.Expression, precAssignment)

	case *term.CompoundAssignmentExpression:
		g.pattern(t.Binding)
		g.write(" ", t.Operator, " ")
		g.expr(t.Expression, precAssignment)

	case *term.StaticMemberExpression:
		g.expr(t.Object, precCall)
		g.write(".", t.Property.Val())

	case *term.ComputedMemberExpression:
		g.expr(t.Object, precCall)
		g.write("[")
		g.expr(t.Expression, precSequence)
		g.write("]")

	case *term.CallExpression:
		g.expr(t.Callee, precCall)
		g.write("(")
		g.arguments(t.Arguments)
		g.write(")")

	case *term.NewExpression:
		g.write("new ")

		if _, isCall := t.Callee.(*term.CallExpression); isCall {
			g.write("(")
			g.expr(t.Callee, precSequence)
			g.write(")")
		} else {
			g.expr(t.Callee, precCall)
		}

		g.write("(")
		g.arguments(t.Arguments)
		g.write(")")

	case *term.YieldExpression:
		g.write("yield")

		if t.Expression != nil {
			g.write(" ")
			g.expr(t.Expression, precAssignment)
		}

	case *term.YieldGeneratorExpression:
		g.write("yield* ")
		g.expr(t.Expression, precAssignment)

	case *term.FunctionExpression:
		g.function(t.Name, t.IsGenerator, t.Params, t.Body)

	case *term.ArrowExpression:
		g.params(t.Params)
		g.write(" => ")

		switch b := t.Body.(type) {
		case *term.FunctionBody:
			g.body(b)
		case *term.ObjectExpression:
			g.write("(")
			g.exprInner(b)
			g.write(")")
		default:
			g.expr(b, precAssignment)
		}

	case *term.ClassExpression:
		g.class(t.Name, t.Super, t.Elements)

	case *term.SyntaxTemplate:
		g.raw(t.Template)

	case *term.SyntaxQuote:
		g.template(t.Template)

	case *term.BindingIdentifier, *term.BindingWithDefault,
		*term.ArrayBinding, *term.ObjectBinding:
		g.pattern(t)

	default:
		g.unsupported(t)
	}
}

func needsSpace(op string, operand term.Term) bool {
	switch op {
	case "typeof", "void", "delete":
		return true
	case "+", "-":
		switch o := operand.(type) {
		case *term.UnaryExpression:
			return o.Operator[0] == op[0]
		case *term.UpdateExpression:
			return o.IsPrefix && o.Operator[0] == op[0]
		}
	}

	return false
}

func (g *generator) binary(t *term.BinaryExpression) {
	op := t.Operator.Val()

	if op == "," {
		g.expr(t.Left, precSequence)
		g.write(", ")
		g.expr(t.Right, precAssignment)

		return
	}

	p, assoc, _ := term.BinaryOperator(op)
	p += precConditional

	left, right := p, p+1

	if assoc == term.AssocRight {
		// unary operands are not allowed on the left of "**"
		left, right = precPostfix, p
	}

	g.expr(t.Left, left)
	g.write(" ", op, " ")
	g.expr(t.Right, right)
}

// arguments writes a comma-separated list of expressions or raw tokens.
func soleTerm(items []term.Item) (term.Term, bool) {
	if len(items) != 1 {
		return nil, false
	}

	t, ok := items[0].(term.Term)

	return t, ok
}

func (g *generator) arguments(items []term.Item) {
	first := true

	for _, it := range items {
		switch v := it.(type) {
		case term.Term:
			if !first {
				g.write(", ")
			}

			g.expr(v, precAssignment)

		case *syntax.Syntax:
			if !first && !v.Is(syntax.KindPunctuator, ",") {
				g.write(" ")
			}

			g.raw(v)
		}

		first = false
	}
}

func (g *generator) template(t *term.TemplateExpression) {
	if g.taggedCalls {
		g.templateCall(t)

		return
	}

	if t.Tag != nil {
		g.expr(t.Tag, precCall)
	}

	g.write("`")

	for _, el := range t.Elements {
		if te, ok := el.(*term.TemplateElement); ok {
			g.write(te.RawValue)

			continue
		}

		g.write("${")
		g.expr(el, precSequence)
		g.write("}")
	}

	g.write("`")
}

// templateCall renders a template in call form: tag(["a", "b"], x) for a
// tagged template and "a" + (x) + "b" otherwise.
func (g *generator) templateCall(t *term.TemplateExpression) {
	var (
		chunks []string
		values []term.Term
	)

	for _, el := range t.Elements {
		if te, ok := el.(*term.TemplateElement); ok {
			chunks = append(chunks, strconv.Quote(te.RawValue))
		} else {
			values = append(values, el)
		}
	}

	if t.Tag == nil {
		g.write("(")

		for i, c := range chunks {
			if i > 0 {
				g.write(" + ")
			}

			g.write(c)

			if i < len(values) {
				g.write(" + (")
				g.expr(values[i], precSequence)
				g.write(")")
			}
		}

		g.write(")")

		return
	}

	g.expr(t.Tag, precCall)
	g.write("([")

	for i, c := range chunks {
		if i > 0 {
			g.write(", ")
		}

		g.write(c)
	}

	g.write("]")

	for _, v := range values {
		g.write(", ")
		g.expr(v, precAssignment)
	}

	g.write(")")
}

func (g *generator) propertyName(t term.Term) {
	switch n := t.(type) {
	case *term.StaticPropertyName:
		g.write(n.Value.String())

	case *term.ComputedPropertyName:
		g.write("[")
		g.expr(n.Expression, precAssignment)
		g.write("]")

	default:
		g.unsupported(t)
	}
}

func (g *generator) property(t term.Term) {
	switch p := t.(type) {
	case *term.DataProperty:
		g.propertyName(p.Name)
		g.write(": ")
		g.expr(p.Expression, precAssignment)

	case *term.ShorthandProperty:
		g.shorthand(p.Name)

	case *term.BindingPropertyIdentifier:
		g.shorthand(p.Binding.Name)

		if p.Init != nil {
			g.write(" = ")
			g.expr(p.Init, precAssignment)
		}

	case *term.Method, *term.Getter, *term.Setter:
		g.method(p)

	default:
		g.unsupported(t)
	}
}

// shorthand writes {x} as "x", or as "x: x$1" when the binding of x was
// renamed.
func (g *generator) shorthand(name *syntax.Syntax) {
	if out := g.outName(name); out != name.Val() {
		g.write(name.Val(), ": ", out)
	} else {
		g.write(out)
	}
}

// pattern writes a binding pattern or an assignment target.
func (g *generator) pattern(t term.Term) {
	switch p := t.(type) {
	case *term.BindingIdentifier:
		g.ident(p.Name)

	case *term.BindingWithDefault:
		g.pattern(p.Binding)
		g.write(" = ")
		g.expr(p.Init, precAssignment)

	case *term.ArrayBinding:
		g.write("[")

		for i, el := range p.Elements {
			if i > 0 {
				g.write(", ")
			}

			if el != nil {
				g.pattern(el)
			}
		}

		if p.RestElement != nil {
			if len(p.Elements) > 0 {
				g.write(", ")
			}

			g.write("...")
			g.pattern(p.RestElement)
		}

		g.write("]")

	case *term.ObjectBinding:
		g.write("{")

		for i, prop := range p.Properties {
			if i > 0 {
				g.write(", ")
			}

			g.pattern(prop)
		}

		g.write("}")

	case *term.BindingPropertyIdentifier:
		g.property(p)

	case *term.BindingPropertyProperty:
		g.propertyName(p.Name)
		g.write(": ")
		g.pattern(p.Binding)

	default:
		g.expr(t, precCall)
	}
}
