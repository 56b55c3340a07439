package expand

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// evalFunc adapts a function to the Evaluator interface.
type evalFunc func(t term.Term) (any, error)

func (f evalFunc) Eval(_ context.Context, t term.Term, _ syntax.Phase) (any, error) {
	return f(t)
}

// constEval evaluates every syntax declaration to v.
func constEval(v any) Evaluator {
	return evalFunc(func(term.Term) (any, error) { return v, nil })
}

// newTestContext reads src into a fresh top-level scope.
func newTestContext(t *testing.T, src string, ev Evaluator) (*Context, []term.Item) {
	t.Helper()

	stx, err := reader.Read(src)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	bt := syntax.NewBindingTable()
	top := syntax.NewScope(syntax.LabelTop)

	items := make([]term.Item, len(stx))
	for i, s := range stx {
		items[i] = s.AddScope(top, bt, 0)
	}

	ctx := NewContext("test.js", store.New(), bt, ev, nil, log.Discard())
	ctx.pushScope(top)

	return ctx, items
}

func compile(t *testing.T, src string, ev Evaluator) (string, error) {
	t.Helper()

	ctx, items := newTestContext(t, src, ev)

	out, err := NewCompiler(ctx).Compile(context.Background(), items)
	if err != nil {
		return "", err
	}

	return codegen.GenerateAll(out)
}

// addOne expands M(x) to x + 1.
var addOne = MacroFunc(func(mc *MacroContext) ([]term.Item, error) {
	it, ok := mc.Next()
	if !ok {
		return nil, errors.New("missing argument")
	}

	arg := stxOf(it).Inner()

	return []term.Item{
		arg[0],
		syntax.FromPunctuator("+", mc.Name()),
		syntax.FromNumber(1, mc.Name()),
	}, nil
})

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ev   Evaluator
		want string
	}{
		{
			name: "precedence",
			src:  "a + b * c;\n(a + b) * c;\na - b - c;\na ** b ** c;",
			want: "a + b * c;\n(a + b) * c;\na - b - c;\na ** b ** c;",
		},
		{
			name: "conditional",
			src:  "x = a || b ? 1 : 2;",
			want: "x = a || b ? 1 : 2;",
		},
		{
			name: "function",
			src:  "function f(x) { return x + 1; }\nf(2);",
			want: "function f(x) {\n  return x + 1;\n}\nf(2);",
		},
		{
			name: "macro call",
			src:  "syntax M = 0;\nM(5);",
			ev:   constEval(addOne),
			want: "5 + 1;",
		},
		{
			name: "macro in argument",
			src:  "syntax M = 0;\nf(M(5), 2);",
			ev:   constEval(addOne),
			want: "f(5 + 1, 2);",
		},
		{
			name: "block expanded after declarations",
			src:  "if (a) { M(1); }\nsyntax M = 0;",
			ev:   constEval(addOne),
			want: "if (a) {\n  1 + 1;\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compile(t, tt.src, tt.ev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompile_Hygiene(t *testing.T) {
	// The macro declares its own tmp, which must not capture the user's.
	declare := MacroFunc(func(mc *MacroContext) ([]term.Item, error) {
		ctx := mc.Name()

		return []term.Item{
			syntax.FromKeyword("var", ctx),
			syntax.FromIdentifier("tmp", ctx),
			syntax.FromPunctuator("=", ctx),
			syntax.FromNumber(2, ctx),
			syntax.FromPunctuator(";", ctx),
		}, nil
	})

	got, err := compile(t, "var tmp = 1;\nsyntax m = 0;\nm\nm\ntmp;", constEval(declare))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "var tmp = 1;\nvar tmp$1 = 2;\nvar tmp$2 = 2;\ntmp;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCompile_HygieneReference(t *testing.T) {
	// m expands to the tmp named by its initializer, which keeps referring
	// to the outer tmp inside functions that declare their own.
	ref := evalFunc(func(init term.Term) (any, error) {
		name := init.(*term.IdentifierExpression).Name //nolint:forcetypeassert

		return MacroFunc(func(*MacroContext) ([]term.Item, error) {
			return []term.Item{name}, nil
		}), nil
	})

	src := "var tmp = 1;\nsyntax m = tmp;\n" +
		"function f() { var tmp = 2; return m; }\n" +
		"function g() { var tmp = 3; return m; }"

	got, err := compile(t, src, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "var tmp = 1;\n" +
		"function f() {\n  var tmp$1 = 2;\n  return tmp;\n}\n" +
		"function g() {\n  var tmp$2 = 3;\n  return tmp;\n}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCompile_Recursion(t *testing.T) {
	// countdown captures the identifier its initializer names and emits it
	// followed by a smaller number, until the number reaches zero.
	countdown := evalFunc(func(init term.Term) (any, error) {
		self := init.(*term.IdentifierExpression).Name //nolint:forcetypeassert

		return MacroFunc(func(mc *MacroContext) ([]term.Item, error) {
			it, _ := mc.Next()

			if n := stxOf(it).Val(); n != "0" {
				return []term.Item{self, syntax.FromNumber(0, mc.Name())}, nil
			}

			return []term.Item{syntax.FromString("done", mc.Name())}, nil
		}), nil
	})

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntaxrec sees itself", "syntaxrec r = r;\nr 1", `"done";`},
		{"syntax does not", "syntax r = r;\nr 1", "r;\n0;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compile(t, tt.src, countdown)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		ev     Evaluator
		target error
		near   string
	}{
		{
			name:   "binding target",
			src:    "var 1 = 2;",
			target: ErrSyntax,
			near:   "__1__ = 2 ;",
		},
		{
			name:   "not a macro",
			src:    "syntax m = 0;\nm;",
			ev:     constEval(42),
			target: ErrMacro,
		},
		{
			name: "nil result",
			src:  "syntax m = 0;\nm;",
			ev: constEval(MacroFunc(func(*MacroContext) ([]term.Item, error) {
				return nil, nil
			})),
			target: ErrMacro,
		},
		{
			name: "bad result item",
			src:  "syntax m = 0;\nm;",
			ev: constEval(MacroFunc(func(*MacroContext) ([]term.Item, error) {
				return []term.Item{"x"}, nil
			})),
			target: ErrMacro,
		},
		{
			name:   "missing right operand",
			src:    "1 +;",
			target: ErrSyntax,
			near:   "__;__",
		},
		{
			name:   "missing operand in assignment",
			src:    "a = 1 + ;",
			target: ErrSyntax,
		},
		{
			name:   "missing unary operand",
			src:    "x = -;",
			target: ErrSyntax,
		},
		{
			name:   "missing operand in arguments",
			src:    "f(1 *);",
			target: ErrSyntax,
		},
		{
			name:   "missing operand after comma",
			src:    "a, ;",
			target: ErrSyntax,
		},
		{
			name:   "syntax without initializer",
			src:    "syntax m;",
			target: ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src, tt.ev)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			if tt.near != "" && !strings.Contains(err.Error(), tt.near) {
				t.Errorf("expected error near %q, got %q", tt.near, err.Error())
			}
		})
	}
}

func TestEnforest_Ambiguous(t *testing.T) {
	bt := syntax.NewBindingTable()
	a := syntax.NewScope("a")
	b := syntax.NewScope("b")

	xa := syntax.FromIdentifier("x", nil).AddScope(a, bt, syntax.AllPhases)
	xb := syntax.FromIdentifier("x", nil).AddScope(b, bt, syntax.AllPhases)

	bt.Add(xa, syntax.Gensym("x"), 0)
	bt.Add(xb, syntax.Gensym("x"), 0)

	use := xa.AddScope(b, bt, syntax.AllPhases)

	ctx := NewContext("test.js", store.New(), bt, nil, nil, log.Discard())

	_, err := NewEnforester([]term.Item{use}, ctx).Enforest(KindExpression)
	if !errors.Is(err, syntax.ErrAmbiguous) {
		t.Errorf("expected %v, got %v", syntax.ErrAmbiguous, err)
	}
}
