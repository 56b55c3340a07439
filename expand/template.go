package expand

import (
	"log/slog"
	"strconv"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// ProcessTemplate replaces each "$" identifier followed by a braces group in
// items with a placeholder identifier "$N", where N counts interpolations
// in source order. It returns the rewritten tokens and the contents of each
// interpolation.
func ProcessTemplate(items []*syntax.Syntax) ([]*syntax.Syntax, [][]*syntax.Syntax) {
	var interps [][]*syntax.Syntax

	var walk func([]*syntax.Syntax) []*syntax.Syntax

	walk = func(in []*syntax.Syntax) []*syntax.Syntax {
		out := make([]*syntax.Syntax, 0, len(in))

		for i := 0; i < len(in); i++ {
			s := in[i]

			switch {
			case s.Is(syntax.KindIdentifier, "$") && i+1 < len(in) && in[i+1].IsBraces():
				out = append(out,
					syntax.FromIdentifier("$"+strconv.Itoa(len(interps)), s))
				interps = append(interps, in[i+1].Inner())
				i++

			case s.IsDelimiter():
				out = append(out, s.WithInner(walk(s.Inner())))

			default:
				out = append(out, s)
			}
		}

		return out
	}

	return walk(items), interps
}

// placeholder returns N for a "$N" identifier.
func placeholder(s *syntax.Syntax) (int, bool) {
	v := s.Val()
	if !s.IsIdentifier() || len(v) < 2 || v[0] != '$' {
		return 0, false
	}

	n, err := strconv.Atoi(v[1:])
	if err != nil || n < 0 || v[1] == '+' {
		return 0, false
	}

	return n, true
}

// ReplaceTemplate returns items with every "$N" placeholder replaced by the
// sanitized values[N]. Placeholders nested in delimiters may only be
// replaced by syntax objects.
func ReplaceTemplate(items []*syntax.Syntax, values []any) ([]term.Item, error) {
	out := make([]term.Item, 0, len(items))

	for _, s := range items {
		switch n, ok := placeholder(s); {
		case ok:
			if n >= len(values) {
				return nil, ErrMacro.Wrapf("template placeholder %s has no value", s.Val()).
					With(slog.Int("values", len(values)))
			}

			vs, err := Sanitize(values[n])
			if err != nil {
				return nil, err
			}

			out = append(out, vs...)

		case s.IsDelimiter():
			inner, err := replaceNested(s.Inner(), values)
			if err != nil {
				return nil, err
			}

			out = append(out, s.WithInner(inner))

		default:
			out = append(out, s)
		}
	}

	return out, nil
}

func replaceNested(items []*syntax.Syntax, values []any) ([]*syntax.Syntax, error) {
	replaced, err := ReplaceTemplate(items, values)
	if err != nil {
		return nil, err
	}

	out := make([]*syntax.Syntax, len(replaced))

	for i, it := range replaced {
		s, ok := term.AsSyntax(it)
		if !ok {
			t, _ := it.(term.Term)

			return nil, ErrMacro.Wrapf("cannot place %s inside a delimiter", term.Name(t))
		}

		out[i] = s
	}

	return out, nil
}

// Sanitize converts a value produced by a macro or template interpolation
// into stream items. Syntax objects and terms are kept, slices are
// flattened, and strings, numbers, and booleans become literal tokens
// without lexical context.
func Sanitize(v any) ([]term.Item, error) {
	switch v := v.(type) {
	case nil:
		return nil, ErrMacro.Wrapf("macro value is nil")

	case *syntax.Syntax:
		if v == nil {
			return nil, ErrMacro.Wrapf("macro value is a nil syntax object")
		}

		return []term.Item{v}, nil

	case term.Term:
		return []term.Item{v}, nil

	case []*syntax.Syntax:
		return term.Items(v), nil

	case []any:
		out := make([]term.Item, 0, len(v))

		for _, el := range v {
			items, err := Sanitize(el)
			if err != nil {
				return nil, err
			}

			out = append(out, items...)
		}

		return out, nil

	case string:
		return []term.Item{syntax.FromString(v, nil)}, nil

	case bool:
		return []term.Item{syntax.FromBoolean(v, nil)}, nil

	case int:
		return []term.Item{syntax.FromNumber(float64(v), nil)}, nil

	case int64:
		return []term.Item{syntax.FromNumber(float64(v), nil)}, nil

	case float64:
		return []term.Item{syntax.FromNumber(v, nil)}, nil

	default:
		return nil, ErrMacro.Wrapf("cannot splice a value of type %T", v)
	}
}
