package expand

import (
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Kind selects the grammar an [Enforester] parses.
type Kind uint8

const (
	KindModule     Kind = iota // module items and statements
	KindExpression             // a single expression without commas
)

// step is the outcome of one iteration of the expression loop.
type step uint8

const (
	stepTerm      step = iota // a term was produced
	stepNoChange              // nothing more can be enforested
	stepOperator              // an operator was pushed on the stack
	stepExpansion             // a macro or alias rewrote the stream
)

type opFrame struct {
	prec    int
	combine func(term.Term) term.Term
}

type opContext struct {
	opFrame

	stack []opFrame
}

func (c *opContext) push(prec int, combine func(term.Term) term.Term) {
	c.stack = append(c.stack, c.opFrame)
	c.prec = prec
	c.combine = combine
}

func (c *opContext) pop() {
	c.opFrame = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func identity(t term.Term) term.Term { return t }

// Enforester parses terms from a stream of syntax objects and terms,
// expanding macros as it goes.
type Enforester struct {
	ctx   *Context
	rest  []term.Item
	term  term.Term
	opCtx opContext
	errp  *error
}

// NewEnforester returns an enforester over items.
func NewEnforester(items []term.Item, ctx *Context) *Enforester {
	return &Enforester{ctx: ctx, rest: items, errp: new(error)}
}

// sub returns an enforester over items that reports resolution errors to e.
func (e *Enforester) sub(items []term.Item) *Enforester {
	return &Enforester{ctx: e.ctx, rest: items, errp: e.errp}
}

func (e *Enforester) subSyntax(items []*syntax.Syntax) *Enforester {
	return e.sub(term.Items(items))
}

// Done reports whether the stream is exhausted.
func (e *Enforester) Done() bool { return len(e.rest) == 0 }

// Rest returns the unconsumed items.
func (e *Enforester) Rest() []term.Item { return e.rest }

// Enforest consumes a prefix of the stream and returns one term of the given
// kind. It returns nil when the stream is empty and an EOF term for a lone
// end-of-input token.
func (e *Enforester) Enforest(kind Kind) (term.Term, error) {
	if e.Done() {
		return nil, nil
	}

	if s, ok := term.AsSyntax(e.peek(0)); ok && s.IsEOF() {
		e.advance()

		return &term.EOF{}, nil
	}

	var (
		t   term.Term
		err error
	)

	if kind == KindExpression {
		t, err = e.enforestExpressionLoop()
	} else {
		t, err = e.enforestModuleItem()
	}

	if err == nil {
		err = *e.errp
	}

	if err != nil {
		return nil, err
	}

	return t, nil
}

func (e *Enforester) peek(n int) term.Item {
	if n < len(e.rest) {
		return e.rest[n]
	}

	return nil
}

func (e *Enforester) advance() term.Item {
	if len(e.rest) == 0 {
		return nil
	}

	it := e.rest[0]
	e.rest = e.rest[1:]

	return it
}

// stxOf returns it as a syntax object, or nil.
func stxOf(it term.Item) *syntax.Syntax {
	s, _ := term.AsSyntax(it)

	return s
}

func isPunctuator(it term.Item, vals ...string) bool {
	return stxOf(it).Is(syntax.KindPunctuator, vals...)
}

func isKeyword(it term.Item, vals ...string) bool {
	return stxOf(it).Is(syntax.KindKeyword, vals...)
}

func isIdentifier(it term.Item, vals ...string) bool {
	return stxOf(it).Is(syntax.KindIdentifier, vals...)
}

func isParens(it term.Item) bool   { return stxOf(it).IsParens() }
func isBraces(it term.Item) bool   { return stxOf(it).IsBraces() }
func isBrackets(it term.Item) bool { return stxOf(it).IsBrackets() }
func isTemplate(it term.Item) bool { return stxOf(it).IsTemplate() }
func isString(it term.Item) bool   { return stxOf(it).IsString() }

func isTerm(it term.Item) bool {
	_, ok := it.(term.Term)

	return ok
}

// sameLine reports whether a and b start on the same source line. Items
// without a known position are treated as being on the same line.
func sameLine(a, b term.Item) bool {
	sa, sb := stxOf(a), stxOf(b)
	if sa == nil || sb == nil || sa.Line() == 0 || sb.Line() == 0 {
		return true
	}

	return sa.Line() == sb.Line()
}

// transform returns the transform bound to it, or nil. Resolution errors
// are recorded and reported when the current production completes.
func (e *Enforester) transform(it term.Item) Transform {
	s := stxOf(it)
	if !s.IsIdentifier() && !s.IsKeyword() {
		return nil
	}

	t, err := e.ctx.resolve(s)
	if err != nil {
		if *e.errp == nil {
			*e.errp = err
		}

		return nil
	}

	return t
}

func (e *Enforester) isForm(it term.Item, forms ...Form) bool {
	ft, ok := e.transform(it).(FormTransform)
	if !ok {
		return false
	}

	for _, f := range forms {
		if ft.Form == f {
			return true
		}
	}

	return false
}

func (e *Enforester) isCompiletime(it term.Item) bool {
	_, ok := e.transform(it).(CompiletimeTransform)

	return ok
}

func (e *Enforester) isVarDecl(it term.Item) bool {
	return e.isForm(it, FormVar, FormLet, FormConst, FormSyntax, FormSyntaxrec)
}

func (e *Enforester) matchPunctuator(val string) (*syntax.Syntax, error) {
	if it := e.peek(0); isPunctuator(it, val) {
		return stxOf(e.advance()), nil
	}

	return nil, e.createError(e.peek(0), "expecting "+val)
}

func (e *Enforester) matchKeyword(val string) (*syntax.Syntax, error) {
	if it := e.peek(0); isKeyword(it, val) {
		return stxOf(e.advance()), nil
	}

	return nil, e.createError(e.peek(0), "expecting "+val)
}

// matchContextual matches an identifier used as a keyword, such as "from"
// or "as".
func (e *Enforester) matchContextual(val string) (*syntax.Syntax, error) {
	if it := e.peek(0); isIdentifier(it, val) {
		return stxOf(e.advance()), nil
	}

	return nil, e.createError(e.peek(0), "expecting "+val)
}

func (e *Enforester) matchDelimiter(ok func(term.Item) bool, what string) ([]*syntax.Syntax, error) {
	if it := e.peek(0); ok(it) {
		return stxOf(e.advance()).Inner(), nil
	}

	return nil, e.createError(e.peek(0), "expecting "+what)
}

func (e *Enforester) matchParens() ([]*syntax.Syntax, error) {
	return e.matchDelimiter(isParens, "parentheses")
}

func (e *Enforester) matchCurlies() ([]*syntax.Syntax, error) {
	return e.matchDelimiter(isBraces, "curly braces")
}

func (e *Enforester) matchSquares() ([]*syntax.Syntax, error) {
	return e.matchDelimiter(isBrackets, "square brackets")
}

func (e *Enforester) matchStringLiteral() (*syntax.Syntax, error) {
	if it := e.peek(0); isString(it) {
		return stxOf(e.advance()), nil
	}

	return nil, e.createError(e.peek(0), "expecting a string literal")
}

func (e *Enforester) consumeSemicolon() {
	if isPunctuator(e.peek(0), ";") {
		e.advance()
	}
}

func (e *Enforester) consumeComma() {
	if isPunctuator(e.peek(0), ",") {
		e.advance()
	}
}

// expectDone reports an error when e has unconsumed items.
func (e *Enforester) expectDone() error {
	if !e.Done() {
		return e.createError(e.peek(0), "unexpected syntax")
	}

	return nil
}

// restExpression enforests one expression from a fresh enforester over the
// rest of e's stream, leaving e's operator state untouched.
func (e *Enforester) restExpression() (term.Term, error) {
	sub := e.sub(e.rest)

	t, err := sub.enforestExpressionLoop()
	if err != nil {
		return nil, err
	}

	e.rest = sub.rest

	return t, nil
}

// parensExpression enforests the full contents of a parenthesized group as
// one expression.
func (e *Enforester) parensExpression() (term.Term, error) {
	inner, err := e.matchParens()
	if err != nil {
		return nil, err
	}

	sub := e.subSyntax(inner)

	t, err := sub.enforestExpression()
	if err != nil {
		return nil, err
	}

	return t, sub.expectDone()
}
