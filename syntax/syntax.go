package syntax

import (
	"maps"
	"strconv"
	"strings"
)

// Syntax is an immutable token or token tree annotated with scope sets.
//
// The zero value is an EOF token with no scopes.
type Syntax struct {
	tok      Token
	delim    Delim
	inner    []*Syntax
	parts    []TemplatePart
	bindings *BindingTable
	all      ScopeSet
	phase    map[Phase]ScopeSet
}

// New returns an atomic syntax object holding tok.
func New(tok Token) *Syntax {
	return &Syntax{tok: tok}
}

// NewDelimiter returns a delimited group. The open token supplies the
// position of the group.
func NewDelimiter(d Delim, inner []*Syntax, open Token) *Syntax {
	open.Kind = KindDelimiter
	open.Value = d.Open()

	return &Syntax{tok: open, delim: d, inner: inner}
}

// NewTemplate returns a template literal made of parts.
func NewTemplate(parts []TemplatePart, tok Token) *Syntax {
	tok.Kind = KindTemplate

	return &Syntax{tok: tok, parts: parts}
}

// derive returns an object holding tok that inherits the scopes, bindings,
// and position of ctx.
func derive(tok Token, ctx *Syntax) *Syntax {
	s := &Syntax{tok: tok}
	if ctx != nil {
		s.bindings = ctx.bindings
		s.all = ctx.all
		s.phase = ctx.phase
		s.tok.Line = ctx.tok.Line
		s.tok.Col = ctx.tok.Col
	}

	return s
}

// FromIdentifier returns an identifier carrying the lexical context of ctx.
// A nil ctx yields an identifier with no scopes.
func FromIdentifier(name string, ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindIdentifier, Value: name}, ctx)
}

// FromKeyword returns a keyword carrying the lexical context of ctx.
func FromKeyword(name string, ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindKeyword, Value: name}, ctx)
}

// FromPunctuator returns a punctuator carrying the lexical context of ctx.
func FromPunctuator(p string, ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindPunctuator, Value: p}, ctx)
}

// FromString returns a string literal whose decoded value is s.
func FromString(s string, ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindString, Value: s}, ctx)
}

// FromNumber returns a numeric literal.
func FromNumber(f float64, ctx *Syntax) *Syntax {
	return derive(
		Token{Kind: KindNumber, Value: strconv.FormatFloat(f, 'g', -1, 64)},
		ctx,
	)
}

// FromBoolean returns a boolean literal.
func FromBoolean(b bool, ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindBoolean, Value: strconv.FormatBool(b)}, ctx)
}

// FromNull returns a null literal.
func FromNull(ctx *Syntax) *Syntax {
	return derive(Token{Kind: KindNull, Value: "null"}, ctx)
}

func fromDelim(d Delim, inner []*Syntax, ctx *Syntax) *Syntax {
	s := derive(Token{Kind: KindDelimiter, Value: d.Open()}, ctx)
	s.delim = d
	s.inner = inner

	return s
}

// FromParens wraps inner in parentheses.
func FromParens(inner []*Syntax, ctx *Syntax) *Syntax {
	return fromDelim(DelimParens, inner, ctx)
}

// FromBraces wraps inner in curly braces.
func FromBraces(inner []*Syntax, ctx *Syntax) *Syntax {
	return fromDelim(DelimBraces, inner, ctx)
}

// FromBrackets wraps inner in square brackets.
func FromBrackets(inner []*Syntax, ctx *Syntax) *Syntax {
	return fromDelim(DelimBrackets, inner, ctx)
}

// Token returns the lexical payload of s.
func (s *Syntax) Token() Token { return s.tok }

// Kind returns the token kind of s.
func (s *Syntax) Kind() Kind { return s.tok.Kind }

// Delim returns the bracketing of a delimited group, or [DelimNone].
func (s *Syntax) Delim() Delim { return s.delim }

// Inner returns the children of a delimited group. The returned slice must
// not be modified.
func (s *Syntax) Inner() []*Syntax { return s.inner }

// Parts returns the elements of a template literal. The returned slice must
// not be modified.
func (s *Syntax) Parts() []TemplatePart { return s.parts }

// Bindings returns the binding table s resolves against.
func (s *Syntax) Bindings() *BindingTable { return s.bindings }

// Line returns the source line of s, or 0 when unknown.
func (s *Syntax) Line() int { return s.tok.Line }

// Val returns the value of an atomic token. Templates render interpolations
// as "${...}" and delimiters render as their bracket pair.
func (s *Syntax) Val() string {
	switch {
	case s.IsDelimiter():
		return s.delim.Open() + s.delim.Close()

	case s.IsTemplate():
		var sb strings.Builder

		for _, p := range s.parts {
			if p.Expr != nil {
				sb.WriteString("${...}")
			} else {
				sb.WriteString(p.Text)
			}
		}

		return sb.String()

	default:
		return s.tok.Value
	}
}

// Is reports whether s is an atomic token of kind k whose value is one of
// vals. With no vals only the kind is compared.
func (s *Syntax) Is(k Kind, vals ...string) bool {
	if s == nil || s.delim != DelimNone || s.tok.Kind != k {
		return false
	}

	if len(vals) == 0 {
		return true
	}

	for _, v := range vals {
		if s.tok.Value == v {
			return true
		}
	}

	return false
}

func (s *Syntax) IsIdentifier() bool { return s.Is(KindIdentifier) }
func (s *Syntax) IsKeyword() bool    { return s.Is(KindKeyword) }
func (s *Syntax) IsPunctuator() bool { return s.Is(KindPunctuator) }
func (s *Syntax) IsNumber() bool     { return s.Is(KindNumber) }
func (s *Syntax) IsString() bool     { return s.Is(KindString) }
func (s *Syntax) IsTemplate() bool   { return s.Is(KindTemplate) }
func (s *Syntax) IsRegExp() bool     { return s.Is(KindRegExp) }
func (s *Syntax) IsBoolean() bool    { return s.Is(KindBoolean) }
func (s *Syntax) IsNull() bool       { return s.Is(KindNull) }
func (s *Syntax) IsEOF() bool        { return s.Is(KindEOF) }

// IsDelimiter reports whether s is a delimited group.
func (s *Syntax) IsDelimiter() bool { return s != nil && s.delim != DelimNone }

func (s *Syntax) IsParens() bool   { return s != nil && s.delim == DelimParens }
func (s *Syntax) IsBraces() bool   { return s != nil && s.delim == DelimBraces }
func (s *Syntax) IsBrackets() bool { return s != nil && s.delim == DelimBrackets }

// IsSyntaxTemplate reports whether s is a #`...` group.
func (s *Syntax) IsSyntaxTemplate() bool {
	return s != nil && s.delim == DelimSyntaxTemplate
}

// AllScopes returns the scopes that apply to every phase.
func (s *Syntax) AllScopes() ScopeSet { return s.all }

// PhaseScopes returns the scopes added for phase p only.
func (s *Syntax) PhaseScopes(p Phase) ScopeSet { return s.phase[p] }

// Scopes returns the effective scope set of s at phase p: the all-phases set
// followed by the phase-specific set.
func (s *Syntax) Scopes(p Phase) ScopeSet {
	ps := s.phase[p]
	if len(ps) == 0 {
		return s.all
	}

	out := make(ScopeSet, 0, len(s.all)+len(ps))
	out = append(out, s.all...)

	return append(out, ps...)
}

// AddScope returns a copy of s with sc added to the scope set selected by
// phase. Delimiters and template interpolations are updated recursively.
// A nil bt keeps the current binding table.
func (s *Syntax) AddScope(sc Scope, bt *BindingTable, phase Phase) *Syntax {
	return s.addScope(sc, bt, phase, false)
}

// FlipScope is like [Syntax.AddScope] except that a scope already present is
// removed instead of added.
func (s *Syntax) FlipScope(sc Scope, bt *BindingTable, phase Phase) *Syntax {
	return s.addScope(sc, bt, phase, true)
}

func (s *Syntax) addScope(sc Scope, bt *BindingTable, phase Phase, flip bool) *Syntax {
	n := *s
	if bt != nil {
		n.bindings = bt
	}

	if s.inner != nil {
		n.inner = make([]*Syntax, len(s.inner))
		for i, c := range s.inner {
			n.inner[i] = c.addScope(sc, bt, phase, flip)
		}
	}

	if s.parts != nil {
		n.parts = make([]TemplatePart, len(s.parts))
		for i, p := range s.parts {
			if p.Expr != nil {
				p.Expr = p.Expr.addScope(sc, bt, phase, flip)
			}

			n.parts[i] = p
		}
	}

	update := func(old ScopeSet) ScopeSet {
		if flip {
			if i := old.Index(sc); i >= 0 {
				return old.without(i)
			}
		}

		return old.with(sc)
	}

	if phase == AllPhases {
		n.all = update(s.all)
	} else {
		n.phase = maps.Clone(s.phase)
		if n.phase == nil {
			n.phase = make(map[Phase]ScopeSet, 1)
		}

		n.phase[phase] = update(s.phase[phase])
	}

	return &n
}

// RemoveScope returns a copy of s with one occurrence of sc removed, taken
// from the phase-specific set when present there and from the all-phases set
// otherwise.
func (s *Syntax) RemoveScope(sc Scope, phase Phase) *Syntax {
	n := *s

	if s.inner != nil {
		n.inner = make([]*Syntax, len(s.inner))
		for i, c := range s.inner {
			n.inner[i] = c.RemoveScope(sc, phase)
		}
	}

	if s.parts != nil {
		n.parts = mapParts(s.parts, func(e *Syntax) *Syntax { return e.RemoveScope(sc, phase) })
	}

	if i := s.phase[phase].Index(sc); phase != AllPhases && i >= 0 {
		n.phase = maps.Clone(s.phase)
		n.phase[phase] = s.phase[phase].without(i)
	} else if i := s.all.Index(sc); i >= 0 {
		n.all = s.all.without(i)
	}

	return &n
}

// WithInner returns a copy of the delimiter s holding inner.
func (s *Syntax) WithInner(inner []*Syntax) *Syntax {
	n := *s
	n.inner = inner

	return &n
}

// WithParts returns a copy of the template s holding parts.
func (s *Syntax) WithParts(parts []TemplatePart) *Syntax {
	n := *s
	n.parts = parts

	return &n
}

// WithContext returns a copy of s carrying the scopes and binding table of
// ctx in place of its own.
func (s *Syntax) WithContext(ctx *Syntax) *Syntax {
	n := *s
	if ctx != nil {
		n.bindings = ctx.bindings
		n.all = ctx.all
		n.phase = ctx.phase
	}

	if s.inner != nil {
		n.inner = make([]*Syntax, len(s.inner))
		for i, c := range s.inner {
			n.inner[i] = c.WithContext(ctx)
		}
	}

	if s.parts != nil {
		n.parts = mapParts(s.parts, func(e *Syntax) *Syntax { return e.WithContext(ctx) })
	}

	return &n
}

func mapParts(parts []TemplatePart, fn func(*Syntax) *Syntax) []TemplatePart {
	out := make([]TemplatePart, len(parts))
	for i, p := range parts {
		if p.Expr != nil {
			p.Expr = fn(p.Expr)
		}

		out[i] = p
	}

	return out
}

// String renders s approximately as source text.
func (s *Syntax) String() string {
	switch {
	case s == nil:
		return "<nil>"

	case s.IsDelimiter():
		parts := make([]string, 0, len(s.inner)+2)
		parts = append(parts, s.delim.Open())

		for _, c := range s.inner {
			parts = append(parts, c.String())
		}

		return strings.Join(append(parts, s.delim.Close()), " ")

	case s.IsString():
		if s.tok.Raw != "" {
			return s.tok.Raw
		}

		return strconv.Quote(s.tok.Value)

	case s.IsTemplate():
		return "`" + s.Val() + "`"

	default:
		return s.tok.Value
	}
}
