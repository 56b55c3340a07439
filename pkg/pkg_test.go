package pkg

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "stx"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_Is(t *testing.T) {
	base := NewError("base")
	other := NewError("other")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", base, true},
		{"wrapped", base.Wrap(errors.New("cause")), true},
		{"attributed", base.With(slog.String("k", "v")), true},
		{"chained", base.Wrapf("x %d", 1).With(slog.Int("n", 1)), true},
		{"unrelated", other.Wrap(errors.New("cause")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, base); got != tt.want {
				t.Errorf("expected errors.Is = %v, got %v", tt.want, got)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := NewError("expansion failed").Wrap(errors.New("bad token"))
	if got, want := err.Error(), "expansion failed: bad token"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := WrapError(err); got != err {
		t.Errorf("expected WrapError to return the same *Error")
	}

	attrs := err.With(slog.String("file", "a.js")).Attrs()
	if !slices.ContainsFunc(attrs, func(a slog.Attr) bool { return a.Key == "file" }) {
		t.Errorf("expected attrs to contain file, got %v", attrs)
	}
}

func TestSearchPath_IncludesExistingDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(PathEnv, "")

	got := SearchPath(dir, dir+"/does-not-exist")
	if !slices.Contains(got, dir) {
		t.Errorf("expected search path to contain %q, got %v", dir, got)
	}

	if slices.Contains(got, dir+"/does-not-exist") {
		t.Errorf("expected missing directory to be filtered, got %v", got)
	}
}
