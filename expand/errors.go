package expand

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

var (
	// ErrSyntax is returned when a token stream does not form a valid
	// program.
	ErrSyntax = pkg.NewError("syntax error")

	// ErrMacro is returned when a macro is bound to something that cannot
	// be invoked or returns something that cannot be spliced.
	ErrMacro = pkg.NewError("macro error")
)

// errorWindow is the number of stream items rendered around an error.
const errorWindow = 20

// createError returns an [ErrSyntax] describing offender. The message
// includes up to 20 items of the remaining stream with the offender
// rendered as __x__.
func (e *Enforester) createError(offender term.Item, msg string) *pkg.Error {
	return e.errorFrom(ErrSyntax, offender, msg)
}

func (e *Enforester) errorFrom(base *pkg.Error, offender term.Item, msg string) *pkg.Error {
	var window string

	if len(e.rest) > 0 {
		var parts []string

		render := func(it term.Item) {
			s, ok := term.AsSyntax(it)

			switch {
			case !ok:
				t, _ := it.(term.Term)
				parts = append(parts, term.Name(t))
			case it == offender:
				parts = append(parts, "__"+s.Val()+"__")
			default:
				parts = append(parts, s.Val())
			}
		}

		for _, it := range e.rest[:min(len(e.rest), errorWindow)] {
			if s, ok := term.AsSyntax(it); ok && s.IsDelimiter() && it != offender {
				for _, c := range s.Inner() {
					render(c)
				}

				continue
			}

			render(it)
		}

		window = strings.Join(parts, " ")
	} else {
		window = describe(offender)
	}

	attrs := []slog.Attr{slog.String("near", window)}
	if s, ok := term.AsSyntax(offender); ok {
		attrs = append(attrs, slog.Int("line", s.Line()))
	}

	return base.Wrapf("%s\n%s", msg, window).With(attrs...)
}

func describe(it term.Item) string {
	switch v := it.(type) {
	case *syntax.Syntax:
		return v.String()
	case term.Term:
		return term.Name(v)
	default:
		return "end of input"
	}
}
