package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/pkg"
)

// writeFiles creates each file under dir and returns dir.
func writeFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	for name, src := range files {
		path := filepath.Join(dir, name)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(data)
}

// TestExpandRun tests expanding modules from the file system.
func TestExpandRun(t *testing.T) {
	t.Setenv(pkg.PathEnv, "")

	dir := writeFiles(t, t.TempDir(), map[string]string{
		"main.js":     "import { double } from \"./lib.js\";\ndouble 21;",
		"lib.js":      "export syntax double = ctx => #`${ctx.next()} * 2`;",
		"search.js":   "import { inc } from \"util\";\ninc 1;",
		"inc/util.js": "export syntax inc = ctx => #`${ctx.next()} + 1`;",
	})

	tests := []struct {
		name    string
		source  string
		include []string
		want    string
	}{
		{"relative import", "main.js", nil, "21 * 2;\n"},
		{"include directory", "search.js", []string{filepath.Join(dir, "inc")}, "1 + 1;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.js")
			ctx := WithInclude(context.Background(), tt.include)

			e := &Expand{Indent: 2, Output: out, Source: filepath.Join(dir, tt.source)}
			if err := e.Run(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := readFile(t, out); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestExpandMissingSource tests that a missing source file is reported.
func TestExpandMissingSource(t *testing.T) {
	e := &Expand{Source: filepath.Join(t.TempDir(), "missing.js")}

	if err := e.Run(context.Background()); err == nil {
		t.Error("expected an error for a missing source file")
	}
}

// shape drops token positions so trees can be compared.
func shape(v any) any {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = shape(e)
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(v))

		for k, e := range v {
			if k != "line" && k != "col" {
				out[k] = shape(e)
			}
		}

		return out

	default:
		return v
	}
}

// TestTokensRun tests the JSON rendering of syntax objects.
func TestTokensRun(t *testing.T) {
	dir := writeFiles(t, t.TempDir(), map[string]string{"main.js": "f(a);"})
	out := filepath.Join(dir, "out.json")

	c := &Tokens{Format: formatJSON, Output: out, Source: filepath.Join(dir, "main.js")}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []any
	if err := json.Unmarshal([]byte(readFile(t, out)), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	want := []any{
		map[string]any{"kind": "identifier", "value": "f"},
		map[string]any{
			"kind":      "delimiter",
			"delimiter": "parens",
			"inner":     []any{map[string]any{"kind": "identifier", "value": "a"}},
		},
		map[string]any{"kind": "punctuator", "value": ";"},
	}

	if diff := cmp.Diff(want, shape(got)); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}
}

// TestASTRun tests the YAML rendering of expanded terms.
func TestASTRun(t *testing.T) {
	dir := writeFiles(t, t.TempDir(), map[string]string{
		"main.js": "syntax m = ctx => #`1`;\nm;",
	})
	out := filepath.Join(dir, "out.yaml")

	a := &AST{Format: formatYAML, Indent: 2, Output: out, Source: filepath.Join(dir, "main.js")}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal([]byte(readFile(t, out)), &got); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}

	types := make([]any, 0, len(got))
	for _, node := range got {
		types = append(types, node["type"])
	}

	for _, typ := range types {
		if typ == "ExpressionStatement" {
			return
		}
	}

	t.Errorf("expected an ExpressionStatement, got %v", types)
}
