package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/pkg"
)

// Expand expands the macros of a module and prints the resulting program.
type Expand struct {
	Indent   int    `default:"2"  help:"Indent width for generated code"                        short:"i"`
	Output   string `default:"-"  help:"Output file or '-' for stdout"                          short:"o" type:"path"`
	Resolved bool   `             help:"Print every bound identifier with its binding number"`

	Source string `arg:"" default:"-" help:"Source module file or '-' for stdin." name:"source"`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := compile(ctx, e.Source)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "expand"))
	}

	code, err := codegen.GenerateAll(m.Items,
		codegen.WithIndent(strings.Repeat(" ", e.Indent)),
		codegen.WithResolvedNames(e.Resolved),
	)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "expand"))
	}

	w, closer, err := output(e.Output)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer(); err == nil && cerr != nil {
			err = ErrWriteOutput.Wrap(cerr)
		}
	}()

	if _, err := fmt.Fprintln(w, code); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	log.DebugContext(ctx, "expanded module",
		slog.String("path", m.Path),
		slog.Int("terms", len(m.Items)),
	)

	return nil
}
