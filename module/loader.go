package module

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/stx/pkg"
)

// DefaultExt is appended to specifiers that name no file extension.
const DefaultExt = ".js"

// Loader locates and reads module sources.
type Loader interface {
	// Resolve returns the path of the module named by specifier when it is
	// imported from the module at base.
	Resolve(specifier, base string) (string, error)

	// Load returns the source of the module at path.
	Load(ctx context.Context, path string) (string, error)
}

// FileLoader loads modules from the file system.
//
// Specifiers beginning with "./" or "../" are relative to the importing
// module. Other relative specifiers are looked up in each directory of the
// search path in turn.
type FileLoader struct {
	search []string
}

// NewFileLoader returns a loader searching the include directories ahead of
// those listed in [pkg.PathEnv].
func NewFileLoader(include ...string) *FileLoader {
	return &FileLoader{search: pkg.SearchPath(include...)}
}

// SearchPath returns the directories searched for bare specifiers.
func (l *FileLoader) SearchPath() []string { return l.search }

// Resolve implements [Loader].
func (l *FileLoader) Resolve(specifier, base string) (string, error) {
	var dirs []string

	switch {
	case filepath.IsAbs(specifier):
		dirs = []string{""}
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		dirs = []string{filepath.Dir(base)}
	default:
		dirs = l.search
	}

	for _, dir := range dirs {
		for _, name := range candidates(specifier) {
			path := filepath.Join(dir, name)
			if isFile(path) {
				return filepath.Abs(path)
			}
		}
	}

	return "", ErrNotFound.With(
		slog.String("specifier", specifier),
		slog.String("base", base),
		slog.Any("search", dirs),
	)
}

// Load implements [Loader].
func (l *FileLoader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", ErrNotFound.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", pkg.WrapError(err).With(slog.String("path", path))
	}

	return string(data), nil
}

func candidates(specifier string) []string {
	if filepath.Ext(specifier) != "" {
		return []string{specifier}
	}

	return []string{specifier, specifier + DefaultExt}
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
