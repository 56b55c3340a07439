package eval

import (
	"maps"
	"strings"

	"github.com/ardnew/stx/expand"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Closure is a function defined by compile-time code.
type Closure struct {
	ev     *Evaluator
	params []string
	src    string
	env    map[string]any
}

// Call runs the body of c with its parameters bound to args. Missing
// arguments are nil.
func (c *Closure) Call(args ...any) (any, error) {
	env := c.ev.globals()
	maps.Copy(env, c.env)

	for i, p := range c.params {
		var v any
		if i < len(args) {
			v = callable(args[i])
		}

		env[p] = v
	}

	return c.ev.run(c.src, env)
}

// Expand calls c with a view of the macro call site and returns the result
// as stream items.
func (c *Closure) Expand(mc *expand.MacroContext) ([]term.Item, error) {
	out, err := c.Call(contextView(mc))
	if err != nil {
		return nil, err
	}

	return expand.Sanitize(out)
}

func (ev *Evaluator) closure(
	params *term.FormalParameters,
	body term.Term,
	phase syntax.Phase,
	env map[string]any,
) (*Closure, error) {
	c := &Closure{ev: ev, env: maps.Clone(env)}

	if params != nil {
		if params.Rest != nil {
			return nil, ErrCompile.Wrapf("rest parameters are not supported")
		}

		for _, p := range params.Items {
			bi, ok := p.(*term.BindingIdentifier)
			if !ok {
				return nil, ErrCompile.Wrapf("parameter %s is not supported", term.Name(p))
			}

			b, err := bi.Name.Resolve(phase)
			if err != nil {
				return nil, err
			}

			c.params = append(c.params, envName(b))
		}
	}

	src, err := ev.bodySource(body, phase)
	if err != nil {
		return nil, err
	}

	if _, err := ev.program(src); err != nil {
		return nil, err
	}

	c.src = src

	return c, nil
}

// function is like closure but also binds a named function to itself.
func (ev *Evaluator) function(
	name *term.BindingIdentifier,
	params *term.FormalParameters,
	body *term.FunctionBody,
	phase syntax.Phase,
	env map[string]any,
) (*Closure, error) {
	var b term.Term
	if body != nil {
		b = body
	}

	c, err := ev.closure(params, b, phase, env)
	if err != nil || name == nil {
		return c, err
	}

	bn, err := name.Name.Resolve(phase)
	if err != nil {
		return nil, err
	}

	c.env[envName(bn)] = c.Call

	return c, nil
}

// bodySource translates a closure body. Leading variable declarations
// become expr let bindings and the final return statement supplies the
// result.
func (ev *Evaluator) bodySource(body term.Term, phase syntax.Phase) (string, error) {
	fb, ok := body.(*term.FunctionBody)
	if !ok {
		if body == nil {
			return "nil", nil
		}

		return ev.render(body, phase)
	}

	var sb strings.Builder

	for i, it := range fb.Statements {
		switch s := it.(type) {
		case *term.EmptyStatement:

		case *term.VariableDeclarationStatement:
			for _, d := range s.Declaration.Declarators {
				bi, ok := d.Binding.(*term.BindingIdentifier)
				if !ok || d.Init == nil {
					return "", ErrCompile.Wrapf("function bodies may only declare initialized identifiers")
				}

				b, err := bi.Name.Resolve(phase)
				if err != nil {
					return "", err
				}

				init, err := ev.render(d.Init, phase)
				if err != nil {
					return "", err
				}

				sb.WriteString("let " + envName(b) + " = " + init + "; ")
			}

		case *term.ReturnStatement:
			if i != len(fb.Statements)-1 {
				return "", ErrCompile.Wrapf("return must be the last statement of a function body")
			}

			if s.Expression == nil {
				return sb.String() + "nil", nil
			}

			ret, err := ev.render(s.Expression, phase)
			if err != nil {
				return "", err
			}

			return sb.String() + ret, nil

		default:
			t, _ := it.(term.Term)

			return "", ErrCompile.Wrapf("%s is not supported in a function body", term.Name(t))
		}
	}

	return sb.String() + "nil", nil
}
