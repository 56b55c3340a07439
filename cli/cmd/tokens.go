package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/syntax"
)

// Tokens prints the syntax objects read from a source file.
type Tokens struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})"       short:"f"`
	Indent int    `default:"2"                          help:"Indent width, 0 for compact"  short:"i"`
	Output string `default:"-"                          help:"Output file or '-' for stdout" short:"o" type:"path"`

	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source"`
}

// Run executes the tokens command.
func (c *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSource(c.Source)
	if err != nil {
		return err
	}

	stx, err := reader.New(reader.WithLogger(log.Default())).Read(src)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "tokens"))
	}

	w, closer, err := output(c.Output)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer(); err == nil && cerr != nil {
			err = ErrWriteOutput.Wrap(cerr)
		}
	}()

	if c.Format == formatText {
		return writeTokens(w, stx, c.Indent, 0)
	}

	tree := make([]any, 0, len(stx))
	for _, s := range stx {
		tree = append(tree, tokenTree(s))
	}

	return encode(ctx, w, c.Format, c.Indent, tree)
}

// writeTokens writes one line per token, nesting the contents of each
// delimited group one level deeper.
func writeTokens(w io.Writer, stx []*syntax.Syntax, indent, depth int) error {
	pad := strings.Repeat(" ", indent*depth)

	for _, s := range stx {
		tok := s.Token()

		if !s.IsDelimiter() {
			if _, err := fmt.Fprintf(w, "%4d:%-3d %s%-10s %s\n",
				tok.Line, tok.Col, pad, s.Kind(), s.String()); err != nil {
				return ErrWriteOutput.Wrap(err)
			}

			continue
		}

		if _, err := fmt.Fprintf(w, "%4d:%-3d %s%-10s %s\n",
			tok.Line, tok.Col, pad, syntax.KindDelimiter, s.Delim().Open()); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		if err := writeTokens(w, s.Inner(), indent, depth+1); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "         %s%-10s %s\n",
			pad, syntax.KindDelimiter, s.Delim().Close()); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

func tokenTree(s *syntax.Syntax) map[string]any {
	tok := s.Token()
	node := map[string]any{
		"kind": s.Kind().String(),
		"line": tok.Line,
		"col":  tok.Col,
	}

	if !s.IsDelimiter() {
		node["value"] = s.String()

		return node
	}

	node["delimiter"] = s.Delim().String()

	inner := make([]any, 0, len(s.Inner()))
	for _, c := range s.Inner() {
		inner = append(inner, tokenTree(c))
	}

	node["inner"] = inner

	return node
}
