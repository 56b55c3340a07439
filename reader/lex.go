package reader

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/ardnew/stx/syntax"
)

const eof rune = -1

// Sequence terminators passed to readSeq.
const (
	closeNone     rune = 0
	closeTemplate rune = '`'
)

//nolint:gochecknoglobals
var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "export": true,
	"extends": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "return": true, "super": true, "switch": true,
	"this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true,
	"yield": true,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// punctuators is ordered longest first so the first prefix match wins.
//
//nolint:gochecknoglobals
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
	";", ",", "<", ">", "+", "-", "*", "/", "%", "&", "|", "^",
	"!", "~", "?", ":", "=", ".", "@",
}

type lexer struct {
	src       []rune
	pos       int
	line, col int
}

func (l *lexer) peek(n int) rune {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}

	return eof
}

func (l *lexer) next() rune {
	r := l.peek(0)
	if r == eof {
		return eof
	}

	l.pos++

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) hasPrefix(s string) bool {
	for i, r := range []rune(s) {
		if l.peek(i) != r {
			return false
		}
	}

	return true
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return ErrRead.Wrapf(format, args...).With(
		slog.Int("line", line),
		slog.Int("col", col),
	)
}

func (l *lexer) skipSpace() error {
	for {
		switch r := l.peek(0); {
		case r == eof:
			return nil

		case unicode.IsSpace(r):
			l.next()

		case r == '/' && l.peek(1) == '/':
			for r := l.peek(0); r != eof && r != '\n'; r = l.peek(0) {
				l.next()
			}

		case r == '/' && l.peek(1) == '*':
			line, col := l.line, l.col
			l.next()
			l.next()

			for !l.hasPrefix("*/") {
				if l.next() == eof {
					return l.errorf(line, col, "unterminated comment")
				}
			}

			l.next()
			l.next()

		default:
			return nil
		}
	}
}

// readSeq reads tokens until the terminator end is consumed, or until end of
// input when end is closeNone.
func (l *lexer) readSeq(end rune) ([]*syntax.Syntax, error) {
	var out []*syntax.Syntax

	line, col := l.line, l.col

	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}

		r := l.peek(0)

		switch {
		case r == eof:
			if end != closeNone {
				return nil, l.errorf(line, col, "unterminated group, expected %q", end)
			}

			return out, nil

		case r == end:
			l.next()

			return out, nil

		case r == ')' || r == ']' || r == '}':
			return nil, l.errorf(l.line, l.col, "unexpected %q", r)
		}

		var prev *syntax.Syntax
		if len(out) > 0 {
			prev = out[len(out)-1]
		}

		tok, err := l.readToken(prev, end)
		if err != nil {
			return nil, err
		}

		out = append(out, tok)
	}
}

func (l *lexer) readToken(prev *syntax.Syntax, end rune) (*syntax.Syntax, error) {
	line, col := l.line, l.col
	pos := syntax.Token{Line: line, Col: col}
	r := l.peek(0)

	switch {
	case r == '(' || r == '[' || r == '{':
		l.next()

		d, closer := syntax.DelimParens, ')'

		switch r {
		case '[':
			d, closer = syntax.DelimBrackets, ']'
		case '{':
			d, closer = syntax.DelimBraces, '}'
		}

		inner, err := l.readSeq(closer)
		if err != nil {
			return nil, err
		}

		return syntax.NewDelimiter(d, inner, pos), nil

	case r == '#' && l.peek(1) == '`':
		if end == closeTemplate {
			return nil, l.errorf(line, col, "nested syntax template")
		}

		l.next()
		l.next()

		inner, err := l.readSeq(closeTemplate)
		if err != nil {
			return nil, err
		}

		return syntax.NewDelimiter(syntax.DelimSyntaxTemplate, inner, pos), nil

	case r == '`':
		return l.readTemplate(pos)

	case r == '"' || r == '\'':
		return l.readString(pos)

	case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
		return l.readNumber(pos), nil

	case r == '#':
		l.next()
		pos.Kind, pos.Value = syntax.KindIdentifier, "#"

		return syntax.New(pos), nil

	case isIdentStart(r):
		return l.readWord(pos), nil

	case r == '/' && regexAllowed(prev):
		return l.readRegExp(pos)
	}

	for _, p := range punctuators {
		if l.hasPrefix(p) {
			for range []rune(p) {
				l.next()
			}

			pos.Kind, pos.Value = syntax.KindPunctuator, p

			return syntax.New(pos), nil
		}
	}

	return nil, l.errorf(line, col, "unexpected character %q", r)
}

func (l *lexer) readWord(tok syntax.Token) *syntax.Syntax {
	var sb strings.Builder

	for isIdentPart(l.peek(0)) {
		sb.WriteRune(l.next())
	}

	tok.Value = sb.String()

	switch {
	case tok.Value == "true" || tok.Value == "false":
		tok.Kind = syntax.KindBoolean
	case tok.Value == "null":
		tok.Kind = syntax.KindNull
	case keywords[tok.Value]:
		tok.Kind = syntax.KindKeyword
	default:
		tok.Kind = syntax.KindIdentifier
	}

	return syntax.New(tok)
}

func (l *lexer) readNumber(tok syntax.Token) *syntax.Syntax {
	start := l.pos

	if l.peek(0) == '0' && strings.ContainsRune("xXoObB", l.peek(1)) {
		l.next()
		l.next()

		for isIdentPart(l.peek(0)) {
			l.next()
		}
	} else {
		for isDigit(l.peek(0)) {
			l.next()
		}

		if l.peek(0) == '.' {
			l.next()

			for isDigit(l.peek(0)) {
				l.next()
			}
		}

		if e := l.peek(0); e == 'e' || e == 'E' {
			n := 1
			if s := l.peek(1); s == '+' || s == '-' {
				n = 2
			}

			if isDigit(l.peek(n)) {
				for range n {
					l.next()
				}

				for isDigit(l.peek(0)) {
					l.next()
				}
			}
		}
	}

	tok.Kind = syntax.KindNumber
	tok.Value = string(l.src[start:l.pos])

	return syntax.New(tok)
}

func (l *lexer) readString(tok syntax.Token) (*syntax.Syntax, error) {
	start := l.pos
	quote := l.next()

	var sb strings.Builder

	for {
		r := l.next()

		switch r {
		case eof, '\n':
			return nil, l.errorf(tok.Line, tok.Col, "unterminated string")

		case quote:
			tok.Kind = syntax.KindString
			tok.Value = sb.String()
			tok.Raw = string(l.src[start:l.pos])

			return syntax.New(tok), nil

		case '\\':
			if err := l.readEscape(&sb, tok); err != nil {
				return nil, err
			}

		default:
			sb.WriteRune(r)
		}
	}
}

func (l *lexer) readEscape(sb *strings.Builder, tok syntax.Token) error {
	r := l.next()

	switch r {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\n':
		// line continuation
	case 'x', 'u':
		var digits string

		switch {
		case r == 'u' && l.peek(0) == '{':
			l.next()

			for l.peek(0) != '}' && l.peek(0) != eof {
				digits += string(l.next())
			}

			l.next()

		case r == 'u':
			for range 4 {
				digits += string(l.next())
			}

		default:
			for range 2 {
				digits += string(l.next())
			}
		}

		code, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return l.errorf(tok.Line, tok.Col, "invalid escape \\%c%s", r, digits)
		}

		sb.WriteRune(rune(code))

	case eof:
		return l.errorf(tok.Line, tok.Col, "unterminated string")

	default:
		sb.WriteRune(r)
	}

	return nil
}

func (l *lexer) readTemplate(tok syntax.Token) (*syntax.Syntax, error) {
	start := l.pos
	l.next()

	var (
		parts []syntax.TemplatePart
		text  strings.Builder
	)

	for {
		switch r := l.peek(0); {
		case r == eof:
			return nil, l.errorf(tok.Line, tok.Col, "unterminated template")

		case r == '`':
			l.next()

			parts = append(parts, syntax.TemplatePart{Text: text.String()})
			tok.Raw = string(l.src[start:l.pos])

			return syntax.NewTemplate(parts, tok), nil

		case r == '\\':
			text.WriteRune(l.next())
			text.WriteRune(l.next())

		case r == '$' && l.peek(1) == '{':
			parts = append(parts, syntax.TemplatePart{Text: text.String()})
			text.Reset()

			open := syntax.Token{Line: l.line, Col: l.col}

			l.next()
			l.next()

			inner, err := l.readSeq('}')
			if err != nil {
				return nil, err
			}

			parts = append(parts, syntax.TemplatePart{
				Expr: syntax.NewDelimiter(syntax.DelimBraces, inner, open),
			})

		default:
			text.WriteRune(l.next())
		}
	}
}

func (l *lexer) readRegExp(tok syntax.Token) (*syntax.Syntax, error) {
	start := l.pos
	l.next()

	inClass := false

	for done := false; !done; {
		switch r := l.next(); r {
		case eof, '\n':
			return nil, l.errorf(tok.Line, tok.Col, "unterminated regular expression")
		case '\\':
			l.next()
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			done = !inClass
		}
	}

	for isIdentPart(l.peek(0)) {
		l.next()
	}

	tok.Kind = syntax.KindRegExp
	tok.Value = string(l.src[start:l.pos])

	return syntax.New(tok), nil
}

// regexAllowed reports whether a "/" following prev starts a regular
// expression rather than a division operator.
func regexAllowed(prev *syntax.Syntax) bool {
	switch {
	case prev == nil, prev.IsPunctuator():
		return true
	case prev.IsKeyword():
		return !prev.Is(syntax.KindKeyword, "this", "super")
	default:
		return false
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
