package expand

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

func values(items []term.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if s, ok := term.AsSyntax(it); ok {
			out[i] = s.String()
		} else {
			out[i] = term.Name(it.(term.Term)) //nolint:forcetypeassert
		}
	}

	return out
}

func TestProcessTemplate(t *testing.T) {
	stx, err := reader.Read("#`f(${a}, [${b + c}])`")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	skeleton, interps := ProcessTemplate(stx[0].Inner())

	got := make([]string, len(skeleton))
	for i, s := range skeleton {
		got[i] = s.String()
	}

	if diff := cmp.Diff([]string{"f", "( $0 , [ $1 ] )"}, got); diff != "" {
		t.Errorf("skeleton mismatch (-want +got):\n%s", diff)
	}

	if len(interps) != 2 {
		t.Fatalf("expected 2 interpolations, got %d", len(interps))
	}

	if n := len(interps[1]); n != 3 {
		t.Errorf("expected 3 tokens in second interpolation, got %d", n)
	}
}

func TestReplaceTemplate(t *testing.T) {
	stx, err := reader.Read("$0 + ($1)")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	tests := []struct {
		name   string
		values []any
		want   []string
		err    error
	}{
		{
			name:   "syntax and number",
			values: []any{syntax.FromIdentifier("x", nil), 2},
			want:   []string{"x", "+", "( 2 )"},
		},
		{
			name:   "flattened list",
			values: []any{[]any{"s", true}, 1.5},
			want:   []string{`"s"`, "true", "+", "( 1.5 )"},
		},
		{
			name:   "missing value",
			values: []any{1},
			err:    ErrMacro,
		},
		{
			name:   "term in delimiter",
			values: []any{1, &term.LiteralNullExpression{}},
			err:    ErrMacro,
		},
		{
			name:   "unsupported value",
			values: []any{struct{}{}, 1},
			err:    ErrMacro,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReplaceTemplate(stx, tt.values)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.want, values(got)); diff != "" {
				t.Errorf("replacement mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitize_Nil(t *testing.T) {
	_, err := Sanitize(nil)
	if !errors.Is(err, ErrMacro) {
		t.Errorf("expected %v, got %v", ErrMacro, err)
	}

	if !strings.Contains(err.Error(), "nil") {
		t.Errorf("expected message to mention nil, got %q", err.Error())
	}
}
