package repl

import (
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"member", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"in_braces", "{ fo", 4, "fo", 2, 4},
		{"in_template", "#`fo", 4, "fo", 2, 4},
		{"dollar", "$x", 2, "$x", 0, 2},
		{"underscore", "a_b", 3, "a_b", 0, 3},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestAfterMember(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      bool
	}{
		{"ctx.ne", 4, true},
		{"ne", 0, false},
		{"a + ne", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := afterMember(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Matches{{Str: "alpha"}, {Str: "beta"}}

	if got := renderCandidateBar(matches, nil, -1, false, 0); got != "" {
		t.Errorf("expected an empty bar for zero width, got %q", got)
	}

	if got := renderCandidateBar(nil, nil, -1, false, 80); got != "" {
		t.Errorf("expected an empty bar without matches, got %q", got)
	}

	if got := renderCandidateBar(matches, nil, -1, false, 80); got == "" {
		t.Error("expected a non-empty bar")
	}
}
