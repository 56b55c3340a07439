package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/stx/eval"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/module"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type includeKey struct{}

// WithInclude returns a new context.Context carrying the directories searched
// ahead of the module search path.
func WithInclude(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, includeKey{}, dirs)
}

func includeFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(includeKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinModule is the base name given to a module read from stdin. Relative
// imports in it resolve against the working directory.
const stdinModule = "stdin" + module.DefaultExt

// newModules returns an orchestrator loading modules from the file system,
// with a fresh store and binding table.
func newModules(ctx context.Context) *module.Modules {
	logger := log.Default()
	st := store.New()
	bt := syntax.NewBindingTable()

	return module.New(
		module.NewFileLoader(includeFrom(ctx)...),
		st, bt,
		eval.New(st, bt, eval.WithLogger(logger)),
		module.WithLogger(logger),
	)
}

// compile expands the module named by source, reading stdin when source is
// [stdinSource].
func compile(ctx context.Context, source string) (*module.Module, error) {
	ms := newModules(ctx)

	if source != stdinSource {
		path, err := filepath.Abs(source)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("source", source))
		}

		return ms.LoadAndCompile(ctx, path, 0)
	}

	src, err := readAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return ms.Compile(ctx, src, filepath.Join(wd, stdinModule), 0)
}

// readSource returns the contents of source, reading stdin when source is
// [stdinSource].
func readSource(source string) (string, error) {
	if source == stdinSource {
		return readAll(os.Stdin)
	}

	f, err := os.Open(source)
	if err != nil {
		return "", ErrReadSource.Wrap(err).With(slog.String("source", source))
	}
	defer f.Close()

	return readAll(f)
}

func readAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadSource.Wrap(err)
	}

	return string(data), nil
}

// output returns the writer for path, or stdout when path is empty or
// [stdinSource]. The returned function closes the writer.
func output(path string) (io.Writer, func() error, error) {
	if path == "" || path == stdinSource {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	return f, f.Close, nil
}
