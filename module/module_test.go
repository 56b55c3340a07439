package module

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/eval"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
)

// memLoader serves module sources from a map keyed by absolute path.
type memLoader map[string]string

func (l memLoader) Resolve(specifier, base string) (string, error) {
	p := specifier
	if strings.HasPrefix(specifier, ".") {
		p = path.Join(path.Dir(base), specifier)
	}

	if _, ok := l[p]; !ok {
		return "", ErrNotFound.Wrapf("%s", specifier)
	}

	return p, nil
}

func (l memLoader) Load(_ context.Context, p string) (string, error) {
	src, ok := l[p]
	if !ok {
		return "", ErrNotFound.Wrapf("%s", p)
	}

	return src, nil
}

func newModules(l Loader) *Modules {
	st := store.New()
	bt := syntax.NewBindingTable()

	return New(l, st, bt, eval.New(st, bt))
}

func expandMain(t *testing.T, l memLoader) (string, error) {
	t.Helper()

	m, err := newModules(l).LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		return "", err
	}

	return codegen.GenerateAll(m.Items)
}

func TestModules_Import(t *testing.T) {
	tests := []struct {
		name string
		l    memLoader
		want string
	}{
		{
			"macro import",
			memLoader{
				"/main.js": "import { double } from \"./lib.js\";\ndouble 21;",
				"/lib.js":  "export syntax double = ctx => #`${ctx.next()} * 2`;",
			},
			"21 * 2;",
		},
		{
			"renamed import",
			memLoader{
				"/main.js": "import { double as twice } from \"./lib.js\";\ntwice 3;",
				"/lib.js":  "export syntax double = ctx => #`${ctx.next()} * 2`;",
			},
			"3 * 2;",
		},
		{
			"run-time import kept",
			memLoader{
				"/main.js": "import { x } from \"./lib.js\";\nx;",
				"/lib.js":  "export var x = 1;",
			},
			"import {x} from \"./lib.js\";\nx;",
		},
		{
			"re-export",
			memLoader{
				"/main.js": "import { inc } from \"./mid.js\";\ninc 1;",
				"/mid.js":  "export { inc } from \"./lib.js\";",
				"/lib.js":  "export syntax inc = ctx => #`${ctx.next()} + 1`;",
			},
			"1 + 1;",
		},
		{
			"export all",
			memLoader{
				"/main.js": "import { inc } from \"./mid.js\";\ninc 2;",
				"/mid.js":  "export * from \"./lib.js\";",
				"/lib.js":  "export syntax inc = ctx => #`${ctx.next()} + 1`;",
			},
			"2 + 1;",
		},
		{
			"for syntax",
			memLoader{
				"/main.js": "import { add } from \"./lib.js\" for syntax;\nsyntax m = ctx => #`${add(2)}`;\nm;",
				"/lib.js":  "export var base = 40;\nexport function add(x) {\n  return x + base;\n}",
			},
			"42;",
		},
		{
			"language pragma",
			memLoader{
				"/main.js": "#lang \"./lang.js\";\ninc 1;",
				"/lang.js": "export syntax inc = ctx => #`${ctx.next()} + 1`;",
			},
			"1 + 1;",
		},
		{
			"base language",
			memLoader{
				"/main.js": "#lang \"base\";\nx;",
			},
			"x;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandMain(t, tt.l)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestModules_Errors(t *testing.T) {
	tests := []struct {
		name string
		l    memLoader
		want error
	}{
		{
			"cycle",
			memLoader{
				"/main.js": "import { a } from \"./a.js\";",
				"/a.js":    "import { m } from \"./main.js\";\nexport var a = 1;",
			},
			ErrImportCycle,
		},
		{
			"for syntax cycle",
			memLoader{
				"/main.js": "import { b } from \"./b.js\" for syntax;",
				"/b.js":    "import { a } from \"./main.js\" for syntax;\nexport var b = 1;",
			},
			ErrImportCycle,
		},
		{
			"self import for syntax",
			memLoader{
				"/main.js": "import { a } from \"./main.js\" for syntax;\nexport var a = 1;",
			},
			ErrImportCycle,
		},
		{
			"missing module",
			memLoader{"/main.js": "import { a } from \"./a.js\";"},
			ErrNotFound,
		},
		{
			"missing re-export",
			memLoader{
				"/main.js": "export { nope } from \"./a.js\";",
				"/a.js":    "export var a = 1;",
			},
			ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expandMain(t, tt.l)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestModules_Memoized(t *testing.T) {
	ms := newModules(memLoader{"/main.js": "var x = 1;"})

	a, err := ms.LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := ms.LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Errorf("expected the cached module to be returned")
	}

	c, err := ms.LoadAndCompile(context.Background(), "/main.js", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == c {
		t.Errorf("expected a separate module for phase 1")
	}
}

func TestModules_SourceChanged(t *testing.T) {
	l := memLoader{"/main.js": "var x = 1;"}
	ms := newModules(l)

	a, err := ms.LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l["/main.js"] = "var y = 2;"

	b, err := ms.LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Fatalf("expected a changed source to be recompiled")
	}

	got, err := codegen.GenerateAll(b.Items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "var y = 2;"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestModules_Partition(t *testing.T) {
	l := memLoader{
		"/main.js": "#lang \"base\";\nimport { x } from \"./lib.js\";\n" +
			"export var y = x;\nexport default function () {}\nvar z = 2;",
		"/lib.js": "export var x = 1;",
	}

	m, err := newModules(l).LoadAndCompile(context.Background(), "/main.js", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []int{len(m.Pragmas), len(m.Imports), len(m.Exports), len(m.Body)}
	if diff := cmp.Diff([]int{1, 1, 2, 1}, got); diff != "" {
		t.Errorf("unexpected partition sizes (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"_default", "y"}, m.ExportNames()); diff != "" {
		t.Errorf("unexpected export names (-want +got):\n%s", diff)
	}
}

func TestModules_Visit(t *testing.T) {
	ms := newModules(memLoader{
		"/main.js": "import { inc } from \"./lib.js\";",
		"/lib.js":  "export syntax inc = ctx => #`${ctx.next()} + 1`;\nexport var n = 1;",
	})

	if _, err := ms.LoadAndCompile(context.Background(), "/main.js", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := ms.Store().Exports(0)

	if _, ok := exports["/lib.js:inc"]; !ok {
		t.Errorf("expected /lib.js:inc to be stored, got %v", exports)
	}

	if _, ok := exports["/lib.js:n"]; ok {
		t.Errorf("expected run-time export n not to be stored by a visit")
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")

	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "main.js"):    "main",
		filepath.Join(dir, "sibling.js"): "sibling",
		filepath.Join(lib, "util.js"):    "util",
	}

	for name, src := range files {
		if err := os.WriteFile(name, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Setenv(pkg.PathEnv, "")

	l := NewFileLoader(lib)
	base := filepath.Join(dir, "main.js")

	tests := []struct {
		name      string
		specifier string
		want      string
	}{
		{"relative", "./sibling.js", "sibling"},
		{"relative without extension", "./sibling", "sibling"},
		{"search path", "util", "util"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := l.Resolve(tt.specifier, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := l.Load(context.Background(), p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := l.Resolve("./missing", base); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
