package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/syntax"
)

// render prints a token tree as "kind:value" items with delimiters nested.
func render(items []*syntax.Syntax) string {
	parts := make([]string, 0, len(items))

	for _, s := range items {
		switch {
		case s.IsDelimiter():
			parts = append(parts, s.Delim().String()+"["+render(s.Inner())+"]")
		case s.IsTemplate():
			var sub []string

			for _, p := range s.Parts() {
				if p.Expr != nil {
					sub = append(sub, "${"+render(p.Expr.Inner())+"}")
				} else {
					sub = append(sub, p.Text)
				}
			}

			parts = append(parts, "template["+strings.Join(sub, "|")+"]")
		default:
			parts = append(parts, s.Kind().String()+":"+s.Val())
		}
	}

	return strings.Join(parts, " ")
}

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "declaration",
			src:  "var x = 1;",
			want: "keyword:var identifier:x punctuator:= number:1 punctuator:;",
		},
		{
			name: "nested delimiters",
			src:  "f(a, [b], {c})",
			want: "identifier:f parens[identifier:a punctuator:, brackets[identifier:b] punctuator:, braces[identifier:c]]",
		},
		{
			name: "syntax template",
			src:  "#`x + ${y}`",
			want: "syntax-template[identifier:x punctuator:+ identifier:$ braces[identifier:y]]",
		},
		{
			name: "template literal",
			src:  "`a${b}c`",
			want: "template[a|${identifier:b}|c]",
		},
		{
			name: "regex after punctuator",
			src:  "x = /a[/]b/g",
			want: "identifier:x punctuator:= regexp:/a[/]b/g",
		},
		{
			name: "division after identifier",
			src:  "a / b",
			want: "identifier:a punctuator:/ identifier:b",
		},
		{
			name: "longest punctuator",
			src:  "a >>>= b === c",
			want: "identifier:a punctuator:>>>= identifier:b punctuator:=== identifier:c",
		},
		{
			name: "literals",
			src:  "true null 0x1F 1.5e3 'it\\'s'",
			want: "boolean:true null:null number:0x1F number:1.5e3 string:it's",
		},
		{
			name: "pragma and comments",
			src:  "# lang \"base\"; // comment\n/* block */ syntax",
			want: "identifier:# identifier:lang string:base punctuator:; identifier:syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Read(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.want, render(items)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced close", "a )"},
		{"unterminated parens", "f(a"},
		{"unterminated string", "'abc"},
		{"unterminated template", "`abc"},
		{"unterminated comment", "/* abc"},
		{"bad character", "a \\ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(tt.src); !errors.Is(err, ErrRead) {
				t.Errorf("expected ErrRead, got %v", err)
			}
		})
	}
}

func TestRead_Positions(t *testing.T) {
	items, err := Read("a\n  b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := [][2]int{
		{items[0].Token().Line, items[0].Token().Col},
		{items[1].Token().Line, items[1].Token().Col},
	}

	if diff := cmp.Diff([][2]int{{1, 1}, {2, 3}}, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_Cache(t *testing.T) {
	r := New()

	first, err := r.Read("a + b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first[0] = nil

	second, err := r.Read("a + b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second[0] == nil {
		t.Errorf("expected cached result to be isolated from caller mutation")
	}

	if _, err := New(WithCache(false)).ReadFrom(t.Context(), strings.NewReader("x")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
