package expand

import (
	"log/slog"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Macro is a compile-time value that rewrites the tokens following its
// name.
type Macro interface {
	Expand(ctx *MacroContext) ([]term.Item, error)
}

// MacroFunc adapts a function to the [Macro] interface.
type MacroFunc func(ctx *MacroContext) ([]term.Item, error)

// Expand calls f(ctx).
func (f MacroFunc) Expand(ctx *MacroContext) ([]term.Item, error) { return f(ctx) }

// MacroContext is the view of the call site given to a macro. Items taken
// from it carry the use-site scope of the invocation.
type MacroContext struct {
	enf   *Enforester
	name  *syntax.Syntax
	rest  []term.Item
	use   syntax.Scope
	intro syntax.Scope
}

// Name returns the identifier the macro was invoked by.
func (m *MacroContext) Name() *syntax.Syntax { return m.name }

// Phase returns the phase of the code being expanded.
func (m *MacroContext) Phase() syntax.Phase { return m.enf.ctx.Phase }

// Len returns the number of unconsumed items after the macro name.
func (m *MacroContext) Len() int { return len(m.rest) }

// Next consumes the next raw item. It returns false when no items remain.
func (m *MacroContext) Next() (term.Item, bool) {
	if len(m.rest) == 0 {
		return nil, false
	}

	it := m.rest[0]
	m.rest = m.rest[1:]

	return m.stamp(it), true
}

// NextExpr enforests and consumes one expression.
func (m *MacroContext) NextExpr() (term.Term, error) {
	return m.next(KindExpression)
}

// NextStatement enforests and consumes one statement.
func (m *MacroContext) NextStatement() (term.Term, error) {
	return m.next(KindModule)
}

// Rest enforests every remaining item as a statement.
func (m *MacroContext) Rest() ([]term.Term, error) {
	var out []term.Term

	for len(m.rest) > 0 {
		t, err := m.NextStatement()
		if err != nil {
			return nil, err
		}

		if t != nil {
			out = append(out, t)
		}
	}

	return out, nil
}

// Template returns items with each "$N" placeholder replaced by values[N].
func (m *MacroContext) Template(items []*syntax.Syntax, values ...any) ([]term.Item, error) {
	return ReplaceTemplate(items, values)
}

func (m *MacroContext) next(kind Kind) (term.Term, error) {
	if len(m.rest) == 0 {
		return nil, m.enf.errorFrom(ErrMacro, m.name, "macro "+m.name.Val()+" expected more input")
	}

	sub := m.enf.sub(m.rest)

	t, err := sub.Enforest(kind)
	if err != nil {
		return nil, err
	}

	m.rest = sub.rest

	if t == nil {
		return nil, nil
	}

	return m.stamp(t).(term.Term), nil //nolint:forcetypeassert
}

func (m *MacroContext) stamp(it term.Item) term.Item {
	bt := m.enf.ctx.Bindings

	return term.Map(it, func(s *syntax.Syntax) *syntax.Syntax {
		return s.AddScope(m.use, bt, syntax.AllPhases).
			FlipScope(m.intro, bt, syntax.AllPhases)
	})
}

// expandMacro invokes macros at the head of the stream until the head is
// something else, splicing each result in front of the unconsumed input.
func (e *Enforester) expandMacro() error {
	for {
		head := e.peek(0)

		ct, ok := e.transform(head).(CompiletimeTransform)
		if !ok {
			return nil
		}

		name := stxOf(e.advance())

		m, ok := ct.Value.(Macro)
		if !ok || m == nil {
			return e.errorFrom(ErrMacro, name,
				"the macro name was not bound to a value that could be invoked")
		}

		mc := &MacroContext{
			enf:   e,
			name:  name,
			rest:  e.rest,
			use:   syntax.NewScope(syntax.LabelUse),
			intro: syntax.NewScope(syntax.LabelIntroduced),
		}

		e.ctx.UseScope = mc.use

		e.ctx.Logger.Trace("invoking macro",
			slog.String("macro", name.Val()),
			slog.Int("line", name.Line()),
			slog.String("phase", e.ctx.Phase.String()),
		)

		result, err := m.Expand(mc)
		if err != nil {
			return ErrMacro.Wrap(err).With(
				slog.String("macro", name.Val()),
				slog.Int("line", name.Line()),
			)
		}

		if result == nil {
			return e.errorFrom(ErrMacro, name, "macro must return a list but got nil")
		}

		out := make([]term.Item, 0, len(result)+len(mc.rest))

		for _, it := range result {
			if !isItem(it) {
				return e.errorFrom(ErrMacro, name, "macro must return syntax objects or terms")
			}

			out = append(out, term.FlipScope(it, mc.intro, e.ctx.Bindings, syntax.AllPhases))
		}

		e.rest = append(out, mc.rest...)
	}
}

func isItem(it term.Item) bool {
	switch v := it.(type) {
	case *syntax.Syntax:
		return v != nil
	case term.Term:
		return v != nil
	default:
		return false
	}
}
