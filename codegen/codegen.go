package codegen

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// ErrGenerate is returned when a term cannot be rendered.
var ErrGenerate = pkg.NewError("code generation failed")

// Option configures code generation.
type Option func(*config)

type config struct {
	phase         syntax.Phase
	taggedCalls   bool
	resolvedNames bool
	indent        string
}

// WithPhase sets the phase identifiers are resolved at. The default is 0.
func WithPhase(phase syntax.Phase) Option {
	return func(c *config) { c.phase = phase }
}

// WithTaggedCalls renders tagged templates as ordinary calls taking the
// list of string chunks followed by the interpolated values, and untagged
// templates as string concatenation. This is the form compile-time code
// is evaluated in.
func WithTaggedCalls(enable bool) Option {
	return func(c *config) { c.taggedCalls = enable }
}

// WithResolvedNames renders every bound identifier as its name and binding
// number joined by "$", so that distinct bindings never share a name.
// Free identifiers keep their source name.
func WithResolvedNames(enable bool) Option {
	return func(c *config) { c.resolvedNames = enable }
}

// WithIndent sets the string used for one level of indentation.
func WithIndent(indent string) Option {
	return func(c *config) { c.indent = indent }
}

// Generate renders t.
func Generate(t term.Term, opts ...Option) (string, error) {
	return GenerateAll([]term.Term{t}, opts...)
}

// GenerateAll renders a sequence of statement-level terms separated by
// newlines. Syntax declarations, pragmas, and EOF markers produce no output.
func GenerateAll(ts []term.Term, opts ...Option) (string, error) {
	cfg := config{indent: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}

	items := make([]term.Item, len(ts))
	for i, t := range ts {
		items[i] = t
	}

	return generate(cfg, func(g *generator) { g.list(items) })
}

// GenerateExpression renders the expression t without a statement
// terminator.
func GenerateExpression(t term.Term, opts ...Option) (string, error) {
	cfg := config{indent: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}

	return generate(cfg, func(g *generator) { g.expr(t, precSequence) })
}

func generate(cfg config, emit func(*generator)) (string, error) {
	names := newRenamer()

	// The first pass only records identifier occurrences.
	g := &generator{config: cfg, names: names, collect: true}
	emit(g)

	if g.err != nil {
		return "", g.err
	}

	names.assign()

	g = &generator{config: cfg, names: names}
	emit(g)

	if g.err != nil {
		return "", g.err
	}

	return g.sb.String(), nil
}

type generator struct {
	config

	names   *renamer
	collect bool
	sb      strings.Builder
	depth   int
	err     error
}

func (g *generator) write(s ...string) {
	for _, v := range s {
		g.sb.WriteString(v)
	}
}

func (g *generator) newline() {
	g.sb.WriteByte('\n')
	g.sb.WriteString(strings.Repeat(g.indent, g.depth))
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) unsupported(t term.Term) {
	g.fail(ErrGenerate.Wrapf("unsupported term %s", term.Name(t)).
		With(slog.String("term", term.Name(t))))
}

// ident writes the output name of an identifier in a binding or reference
// position.
func (g *generator) ident(stx *syntax.Syntax) {
	g.write(g.outName(stx))
}

func (g *generator) outName(stx *syntax.Syntax) string {
	b, err := stx.Resolve(g.phase)
	if err != nil {
		g.fail(err)

		return stx.Val()
	}

	if g.resolvedNames {
		if b.IsFree() {
			return b.Name
		}

		return b.Name + "$" + strconv.FormatUint(b.ID, 10)
	}

	if g.collect {
		g.names.record(stx.Val(), b, stx.AllScopes().HasLabel(syntax.LabelIntroduced))
	}

	return g.names.name(stx.Val(), b)
}

// raw writes unexpanded tokens.
func (g *generator) raw(stx *syntax.Syntax) {
	switch {
	case stx.IsSyntaxTemplate():
		g.write("#`")
		g.rawList(stx.Inner())
		g.write("`")

	case stx.IsDelimiter():
		g.write(stx.Delim().Open())
		g.rawList(stx.Inner())
		g.write(stx.Delim().Close())

	case stx.IsTemplate():
		g.write(templateRaw(stx))

	default:
		g.write(stx.String())
	}
}

func (g *generator) rawList(items []*syntax.Syntax) {
	for i, s := range items {
		if i > 0 {
			g.write(" ")
		}

		g.raw(s)
	}
}

func templateRaw(stx *syntax.Syntax) string {
	if raw := stx.Token().Raw; raw != "" {
		return raw
	}

	var sb strings.Builder

	sb.WriteByte('`')

	for _, p := range stx.Parts() {
		if p.Expr == nil {
			sb.WriteString(p.Text)

			continue
		}

		sb.WriteString("${")

		for i, s := range p.Expr.Inner() {
			if i > 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(s.String())
		}

		sb.WriteString("}")
	}

	sb.WriteByte('`')

	return sb.String()
}

// renamer assigns output names to bindings.
type renamer struct {
	order []string
	uses  map[string][]*use
	names map[syntax.Binding]string
}

type use struct {
	binding syntax.Binding
	plain   bool // some occurrence was not introduced by a macro
}

func newRenamer() *renamer {
	return &renamer{
		uses:  make(map[string][]*use),
		names: make(map[syntax.Binding]string),
	}
}

func (r *renamer) record(name string, b syntax.Binding, introduced bool) {
	list, ok := r.uses[name]
	if !ok {
		r.order = append(r.order, name)
	}

	for _, u := range list {
		if u.binding == b {
			u.plain = u.plain || !introduced

			return
		}
	}

	r.uses[name] = append(list, &use{binding: b, plain: !introduced})
}

// assign gives at most one binding per name its source name: the free
// identifier if there is one, otherwise the first binding written outside any
// macro, otherwise the first binding seen. Every other binding sharing the
// name gets the next unused numeric suffix.
func (r *renamer) assign() {
	taken := make(map[string]bool, len(r.order))
	for _, name := range r.order {
		taken[name] = true
	}

	for _, name := range r.order {
		uses := r.uses[name]
		keep := keeper(uses)

		for _, u := range uses {
			if u == keep {
				r.names[u.binding] = name

				continue
			}

			for n := 1; ; n++ {
				cand := name + "$" + strconv.Itoa(n)
				if !taken[cand] {
					taken[cand] = true
					r.names[u.binding] = cand

					break
				}
			}
		}
	}
}

func keeper(uses []*use) *use {
	for _, u := range uses {
		if u.binding.IsFree() {
			return u
		}
	}

	for _, u := range uses {
		if u.plain {
			return u
		}
	}

	return uses[0]
}

func (r *renamer) name(lexeme string, b syntax.Binding) string {
	if n, ok := r.names[b]; ok {
		return n
	}

	return lexeme
}
