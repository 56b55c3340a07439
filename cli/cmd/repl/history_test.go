package repl

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"syntax m = ctx => #`1`;", modeExpand},
		{"list", modeCtrl},
		{"m;", modeExpand},
		{"m;", modeExpand},
		{"list", modeCtrl},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := []HistoryEntry{
		{"syntax m = ctx => #`1`;", modeExpand},
		{"m;", modeExpand},
		{"list", modeCtrl},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(want, loaded.Entries()); diff != "" {
		t.Errorf("unexpected loaded entries (-want +got):\n%s", diff)
	}

	if _, err := loaded.Entry(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))

	if err := h.Load(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("expected no entries, got %d", h.Len())
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"S:x;", HistoryEntry{"x;", modeExpand}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"x;", HistoryEntry{"x;", modeExpand}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := parseEntry(tt.line); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
