package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ardnew/stx/cli/cmd/repl"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/module"
)

// REPL starts an interactive session that expands each entry after the
// entries accepted before it.
type REPL struct {
	Dir string `default:"." help:"Directory relative imports resolve against" type:"existingdir"`
}

// Run executes the repl command.
func (r *REPL) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cacheDir := os.TempDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cacheDir = dir
		}
	}

	dir, err := filepath.Abs(r.Dir)
	if err != nil {
		return ErrReadSource.Wrap(err)
	}

	path := filepath.Join(dir, "repl"+module.DefaultExt)

	return repl.Run(ctx, newModules(ctx), path, cacheDir, log.Default())
}
