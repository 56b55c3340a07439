package eval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/expand"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/reader"
	"github.com/ardnew/stx/store"
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

type fixture struct {
	ev    *Evaluator
	ctx   *expand.Context
	items []term.Item
}

func newFixture(t *testing.T, src string, opts ...Option) *fixture {
	t.Helper()

	stx, err := reader.Read(src)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	bt := syntax.NewBindingTable()
	st := store.New()
	top := syntax.NewScope(syntax.LabelTop)

	items := make([]term.Item, len(stx))
	for i, s := range stx {
		items[i] = s.AddScope(top, bt, 0)
	}

	ev := New(st, bt, opts...)

	ctx := expand.NewContext("test.js", st, bt, ev, nil, log.Discard())
	ctx.CurrentScope = []syntax.Scope{top}

	return &fixture{ev: ev, ctx: ctx, items: items}
}

func (f *fixture) compile() ([]term.Term, error) {
	return expand.NewCompiler(f.ctx).Compile(context.Background(), f.items)
}

func expandSource(t *testing.T, src string, opts ...Option) (string, error) {
	t.Helper()

	out, err := newFixture(t, src, opts...).compile()
	if err != nil {
		return "", err
	}

	return codegen.GenerateAll(out)
}

var twice = expand.MacroFunc(func(mc *expand.MacroContext) ([]term.Item, error) {
	it, ok := mc.Next()
	if !ok {
		return nil, errors.New("missing operand")
	}

	return []term.Item{it, syntax.FromPunctuator("*", nil), syntax.FromNumber(2, nil)}, nil
})

func TestEval_Macros(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"arrow with syntax template",
			"syntax inc = ctx => #`${ctx.next()} + 1`;\ninc 5;",
			"5 + 1;",
		},
		{
			"function expression",
			"syntax inc = function (ctx) {\n  var x = ctx.next();\n  return #`${x} + 1`;\n};\ninc 7;",
			"7 + 1;",
		},
		{
			"template builtin",
			"syntax add = template(\"$0 + $1\");\nadd(1, 2);",
			"1 + 2;",
		},
		{
			"constant builtin",
			"syntax answer = constant(42);\nanswer;",
			"42;",
		},
		{
			"native macro",
			"syntax dbl = twice;\ndbl 3;",
			"3 * 2;",
		},
		{
			"macro output expands again",
			"syntax dbl = twice;\nsyntax inc = ctx => #`dbl ${ctx.next()}`;\ninc 4;",
			"4 * 2;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandSource(t, tt.src, WithNatives(map[string]any{"twice": twice}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func num(f float64) *term.LiteralNumericExpression {
	return &term.LiteralNumericExpression{Value: syntax.FromNumber(f, nil)}
}

func TestEval_Expressions(t *testing.T) {
	ev := New(store.New(), syntax.NewBindingTable(), WithNatives(map[string]any{
		"greeting": "hello",
	}))

	tests := []struct {
		name string
		t    term.Term
		want any
	}{
		{
			"arithmetic",
			&term.BinaryExpression{Left: num(1), Operator: syntax.FromPunctuator("+", nil), Right: num(2)},
			3,
		},
		{
			"native value",
			&term.IdentifierExpression{Name: syntax.FromIdentifier("greeting", nil)},
			"hello",
		},
		{
			"parenthesized",
			&term.ParenthesizedExpression{Inner: []term.Item{num(4)}},
			4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Eval(context.Background(), tt.t, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_ProgramCache(t *testing.T) {
	ev := New(store.New(), syntax.NewBindingTable())
	sum := &term.BinaryExpression{Left: num(1), Operator: syntax.FromPunctuator("+", nil), Right: num(1)}

	for range 3 {
		if _, err := ev.Eval(context.Background(), sum, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	n := 0

	ev.programs.Range(func(any, any) bool {
		n++

		return true
	})

	if n != 1 {
		t.Errorf("expected 1 cached program, got %d", n)
	}
}

func TestEval_Errors(t *testing.T) {
	ev := New(store.New(), syntax.NewBindingTable(), WithNatives(map[string]any{
		"fail": func() (any, error) { return nil, errors.New("boom") },
	}))

	tests := []struct {
		name string
		t    term.Term
		want error
	}{
		{"not an expression", &term.SwitchCase{}, ErrCompile},
		{
			"rest parameter",
			&term.ArrowExpression{
				Params: &term.FormalParameters{
					Rest: &term.BindingIdentifier{Name: syntax.FromIdentifier("xs", nil)},
				},
				Body: num(1),
			},
			ErrCompile,
		},
		{
			"native error",
			&term.CallExpression{Callee: &term.IdentifierExpression{Name: syntax.FromIdentifier("fail", nil)}},
			ErrEvaluate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Eval(context.Background(), tt.t, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEval_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store.New(), syntax.NewBindingTable()).Eval(ctx, num(1), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExports(t *testing.T) {
	f := newFixture(t, "var a = 2;\nfunction dbl(x) {\n  return x * 2;\n}\nvar b = dbl(a);\nsyntax m = constant(1);")

	body, err := f.compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.ev.Exports(context.Background(), body, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[string]any)

	for k, v := range out {
		name, _, _ := strings.Cut(k, "#")
		if c, ok := v.(*Closure); ok {
			v, err = c.Call(5)
			if err != nil {
				t.Fatalf("unexpected error calling %s: %v", name, err)
			}
		}

		got[name] = v
	}

	want := map[string]any{"a": 2, "b": 4, "dbl": 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected exports (-want +got):\n%s", diff)
	}
}

func TestSplitArgs(t *testing.T) {
	stx, err := reader.Read("a, b + c, (d, e)")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	var got []string

	for _, arg := range splitArgs(stx) {
		var parts []string
		for _, s := range arg.([]*syntax.Syntax) { //nolint:forcetypeassert
			parts = append(parts, s.String())
		}

		got = append(got, strings.Join(parts, " "))
	}

	want := []string{"a", "b + c", "( d , e )"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected arguments (-want +got):\n%s", diff)
	}
}
