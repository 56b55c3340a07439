package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/term"
)

// AST prints the fully expanded terms of a module as a tree.
type AST struct {
	Format string `default:"yaml" enum:"json,yaml" help:"Output format (${enum})"       short:"f"`
	Indent int    `default:"2"                     help:"Indent width, 0 for compact"  short:"i"`
	Output string `default:"-"                     help:"Output file or '-' for stdout" short:"o" type:"path"`

	Source string `arg:"" default:"-" help:"Source module file or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := compile(ctx, a.Source)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "ast"))
	}

	tree := make([]any, 0, len(m.Items))
	for _, t := range m.Items {
		tree = append(tree, term.Tree(t))
	}

	w, closer, err := output(a.Output)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer(); err == nil && cerr != nil {
			err = ErrWriteOutput.Wrap(cerr)
		}
	}()

	return encode(ctx, w, a.Format, a.Indent, tree)
}
