package repl

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/eval"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/module"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	t.Setenv(pkg.PathEnv, "")

	st := store.New()
	bt := syntax.NewBindingTable()
	ms := module.New(module.NewFileLoader(), st, bt, eval.New(st, bt))

	return NewSession(ms, filepath.Join(t.TempDir(), "repl.js"), log.Discard())
}

func TestSession_Expand(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	steps := []struct {
		input string
		want  string
	}{
		{"syntax m = ctx => #`${ctx.next()} + 1`;", ""},
		{"m 1;", "1 + 1;"},
		{"m 2;", "2 + 1;"},
	}

	for _, step := range steps {
		got, err := s.Expand(ctx, step.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", step.input, err)
		}

		if got != step.want {
			t.Errorf("expected %q for %q, got %q", step.want, step.input, got)
		}
	}

	if s.Len() != len(steps) {
		t.Errorf("expected %d entries, got %d", len(steps), s.Len())
	}

	if diff := cmp.Diff([]string{"m"}, s.Macros()); diff != "" {
		t.Errorf("unexpected macros (-want +got):\n%s", diff)
	}

	if !slices.Contains(s.Names(), "m") {
		t.Errorf("expected m among the bound names, got %v", s.Names())
	}
}

func TestSession_ExpandError(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if _, err := s.Expand(ctx, "var x = 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Expand(ctx, "import { y } from \"./missing.js\";"); err == nil {
		t.Fatal("expected an error for a missing module")
	}

	if got := s.Source(); got != "var x = 1;" {
		t.Errorf("expected the failed entry to be dropped, got %q", got)
	}
}

func TestSession_ReplaceAndReset(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if _, err := s.Expand(ctx, "var x = 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Replace(ctx, "syntax k = ctx => #`42`;\nk;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "42;" {
		t.Errorf("expected %q, got %q", "42;", got)
	}

	s.Reset()

	if s.Len() != 0 || s.Source() != "" {
		t.Errorf("expected an empty session, got %q", s.Source())
	}
}
