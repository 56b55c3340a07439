package expand

import (
	"github.com/ardnew/stx/term"
)

// enforestBindingTarget parses an identifier, array pattern, or object
// pattern in a binding position.
func (e *Enforester) enforestBindingTarget() (term.Term, error) {
	switch head := e.peek(0); {
	case isBrackets(head):
		return e.enforestArrayBinding()

	case isBraces(head):
		return e.enforestObjectBinding()

	default:
		return e.enforestBindingIdentifier()
	}
}

func (e *Enforester) enforestBindingIdentifier() (*term.BindingIdentifier, error) {
	if head := e.peek(0); isIdentifier(head) || isKeyword(head, "yield") {
		return &term.BindingIdentifier{Name: stxOf(e.advance())}, nil
	}

	return nil, e.createError(e.peek(0), "expecting an identifier")
}

// enforestBindingElement parses a binding target with an optional default.
func (e *Enforester) enforestBindingElement() (term.Term, error) {
	target, err := e.enforestBindingTarget()
	if err != nil {
		return nil, err
	}

	if !isPunctuator(e.peek(0), "=") {
		return target, nil
	}

	e.advance()

	init, err := e.restExpression()
	if err != nil {
		return nil, err
	}

	if init == nil {
		return nil, e.createError(e.peek(0), "expecting a default value")
	}

	return &term.BindingWithDefault{Binding: target, Init: init}, nil
}

func (e *Enforester) enforestArrayBinding() (term.Term, error) {
	inner, err := e.matchSquares()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)
	ab := &term.ArrayBinding{}

	for !enf.Done() {
		switch {
		case isPunctuator(enf.peek(0), ","):
			enf.advance()

			ab.Elements = append(ab.Elements, nil)

			continue

		case isPunctuator(enf.peek(0), "..."):
			enf.advance()

			if ab.RestElement, err = enf.enforestBindingTarget(); err != nil {
				return nil, err
			}

			if err := enf.expectDone(); err != nil {
				return nil, err
			}

			return ab, nil
		}

		el, err := enf.enforestBindingElement()
		if err != nil {
			return nil, err
		}

		ab.Elements = append(ab.Elements, el)

		if !enf.Done() {
			if _, err := enf.matchPunctuator(","); err != nil {
				return nil, err
			}
		}
	}

	return ab, nil
}

func (e *Enforester) enforestObjectBinding() (term.Term, error) {
	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)
	ob := &term.ObjectBinding{}

	for !enf.Done() {
		p, err := enf.enforestBindingProperty()
		if err != nil {
			return nil, err
		}

		ob.Properties = append(ob.Properties, p)

		if !enf.Done() {
			if _, err := enf.matchPunctuator(","); err != nil {
				return nil, err
			}
		}
	}

	return ob, nil
}

func (e *Enforester) enforestBindingProperty() (term.Term, error) {
	head := e.peek(0)

	name, err := e.enforestPropertyName()
	if err != nil {
		return nil, err
	}

	if sp, ok := name.(*term.StaticPropertyName); ok && isIdentifier(head) && !isPunctuator(e.peek(0), ":") {
		bpi := &term.BindingPropertyIdentifier{
			Binding: &term.BindingIdentifier{Name: sp.Value},
		}

		if isPunctuator(e.peek(0), "=") {
			e.advance()

			if bpi.Init, err = e.restExpression(); err != nil {
				return nil, err
			}
		}

		return bpi, nil
	}

	if _, err := e.matchPunctuator(":"); err != nil {
		return nil, err
	}

	binding, err := e.enforestBindingElement()
	if err != nil {
		return nil, err
	}

	return &term.BindingPropertyProperty{Name: name, Binding: binding}, nil
}

// enforestFormalParameters parses the entire stream as a parameter list.
func (e *Enforester) enforestFormalParameters() (*term.FormalParameters, error) {
	params := &term.FormalParameters{}

	for !e.Done() {
		if isPunctuator(e.peek(0), "...") {
			e.advance()

			rest, err := e.enforestBindingTarget()
			if err != nil {
				return nil, err
			}

			params.Rest = rest

			return params, e.expectDone()
		}

		p, err := e.enforestBindingElement()
		if err != nil {
			return nil, err
		}

		params.Items = append(params.Items, p)

		if !e.Done() {
			if _, err := e.matchPunctuator(","); err != nil {
				return nil, err
			}
		}
	}

	return params, nil
}

// transformDestructuring converts an expression parsed before an assignment
// operator into the equivalent binding pattern.
//
//nolint:cyclop
func (e *Enforester) transformDestructuring(t term.Term) (term.Term, error) {
	switch x := t.(type) {
	case *term.IdentifierExpression:
		return &term.BindingIdentifier{Name: x.Name}, nil

	case *term.ParenthesizedExpression:
		if len(x.Inner) == 1 {
			if s := stxOf(x.Inner[0]); s.IsIdentifier() {
				return &term.BindingIdentifier{Name: s}, nil
			}
		}

		return x, nil

	case *term.ObjectExpression:
		props := make([]term.Term, 0, len(x.Properties))

		for _, p := range x.Properties {
			b, err := e.transformDestructuring(p)
			if err != nil {
				return nil, err
			}

			props = append(props, b)
		}

		return &term.ObjectBinding{Properties: props}, nil

	case *term.DataProperty:
		b, err := e.transformDestructuringWithDefault(x.Expression)
		if err != nil {
			return nil, err
		}

		return &term.BindingPropertyProperty{Name: x.Name, Binding: b}, nil

	case *term.ShorthandProperty:
		return &term.BindingPropertyIdentifier{
			Binding: &term.BindingIdentifier{Name: x.Name},
		}, nil

	case *term.ArrayExpression:
		ab := &term.ArrayBinding{}

		for i, el := range x.Elements {
			if spread, ok := el.(*term.SpreadElement); ok {
				if i != len(x.Elements)-1 {
					return nil, e.createError(e.peek(0), "rest element must be last")
				}

				rest, err := e.transformDestructuring(spread.Expression)
				if err != nil {
					return nil, err
				}

				ab.RestElement = rest

				break
			}

			if el == nil {
				ab.Elements = append(ab.Elements, nil)

				continue
			}

			b, err := e.transformDestructuringWithDefault(el)
			if err != nil {
				return nil, err
			}

			ab.Elements = append(ab.Elements, b)
		}

		return ab, nil

	case *term.StaticPropertyName:
		return &term.BindingIdentifier{Name: x.Value}, nil

	case *term.StaticMemberExpression, *term.ComputedMemberExpression,
		*term.BindingIdentifier, *term.BindingWithDefault, *term.ArrayBinding,
		*term.ObjectBinding, *term.BindingPropertyIdentifier,
		*term.BindingPropertyProperty:
		return t, nil
	}

	return nil, e.createError(e.peek(0), "invalid assignment target "+describe(t))
}

func (e *Enforester) transformDestructuringWithDefault(t term.Term) (term.Term, error) {
	if a, ok := t.(*term.AssignmentExpression); ok {
		b, err := e.transformDestructuring(a.Binding)
		if err != nil {
			return nil, err
		}

		return &term.BindingWithDefault{Binding: b, Init: a.Expression}, nil
	}

	return e.transformDestructuring(t)
}
