package codegen

import (
	"errors"
	"testing"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

func id(name string) *term.IdentifierExpression {
	return &term.IdentifierExpression{Name: syntax.FromIdentifier(name, nil)}
}

func num(f float64) *term.LiteralNumericExpression {
	return &term.LiteralNumericExpression{Value: syntax.FromNumber(f, nil)}
}

func bin(left term.Term, op string, right term.Term) *term.BinaryExpression {
	return &term.BinaryExpression{
		Left:     left,
		Operator: syntax.FromPunctuator(op, nil),
		Right:    right,
	}
}

func stmt(e term.Term) *term.ExpressionStatement {
	return &term.ExpressionStatement{Expression: e}
}

func TestGenerate_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr term.Term
		want string
	}{
		{"grouped", bin(bin(id("a"), "+", id("b")), "*", id("c")), "(a + b) * c;"},
		{"tighter", bin(id("a"), "+", bin(id("b"), "*", id("c"))), "a + b * c;"},
		{"left assoc", bin(bin(id("a"), "-", id("b")), "-", id("c")), "a - b - c;"},
		{"right operand", bin(id("a"), "-", bin(id("b"), "-", id("c"))), "a - (b - c);"},
		{"exponent chain", bin(id("a"), "**", bin(id("b"), "**", id("c"))), "a ** b ** c;"},
		{"exponent left", bin(bin(id("a"), "**", id("b")), "**", id("c")), "(a ** b) ** c;"},
		{
			"exponent unary",
			bin(&term.UnaryExpression{Operator: "-", Operand: id("a")}, "**", id("b")),
			"(-a) ** b;",
		},
		{"typeof", &term.UnaryExpression{Operator: "typeof", Operand: id("x")}, "typeof x;"},
		{
			"double negation",
			&term.UnaryExpression{
				Operator: "-",
				Operand:  &term.UnaryExpression{Operator: "-", Operand: id("x")},
			},
			"- -x;",
		},
		{
			"conditional",
			&term.ConditionalExpression{Test: id("a"), Consequent: num(1), Alternate: num(2)},
			"a ? 1 : 2;",
		},
		{
			"call",
			&term.CallExpression{
				Callee:    &term.StaticMemberExpression{Object: id("console"), Property: syntax.FromIdentifier("log", nil)},
				Arguments: []term.Item{num(5), bin(num(1), ",", num(2))},
			},
			"console.log(5, (1, 2));",
		},
		{"object statement", &term.ObjectExpression{}, "({});"},
		{
			"arrow object body",
			&term.ArrowExpression{
				Params: &term.FormalParameters{},
				Body:   &term.ObjectExpression{},
			},
			"() => ({});",
		},
		{
			"string",
			&term.LiteralStringExpression{Value: syntax.FromString(`a"b`, nil)},
			`"a\"b";`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(stmt(tt.expr))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerate_Statements(t *testing.T) {
	x := &term.BindingIdentifier{Name: syntax.FromIdentifier("x", nil)}

	tests := []struct {
		name  string
		terms []term.Term
		want  string
	}{
		{
			"var",
			[]term.Term{&term.VariableDeclarationStatement{
				Declaration: &term.VariableDeclaration{
					Kind:        "var",
					Declarators: []*term.VariableDeclarator{{Binding: x, Init: num(1)}},
				},
			}},
			"var x = 1;",
		},
		{
			"syntax omitted",
			[]term.Term{
				&term.VariableDeclarationStatement{
					Declaration: &term.VariableDeclaration{
						Kind:        "syntax",
						Declarators: []*term.VariableDeclarator{{Binding: x, Init: num(1)}},
					},
				},
				stmt(id("y")),
				&term.EOF{},
			},
			"y;",
		},
		{
			"if else",
			[]term.Term{&term.IfStatement{
				Test:       id("a"),
				Consequent: &term.BlockStatement{Block: &term.Block{Statements: []term.Item{stmt(id("b"))}}},
				Alternate:  &term.ReturnStatement{},
			}},
			"if (a) {\n  b;\n} else return;",
		},
		{
			"function",
			[]term.Term{&term.FunctionDeclaration{
				Name:   x,
				Params: &term.FormalParameters{Items: []term.Term{x}},
				Body: &term.FunctionBody{Statements: []term.Item{
					&term.ReturnStatement{Expression: id("x")},
				}},
			}},
			"function x(x) {\n  return x;\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateAll(tt.terms)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerate_Renaming(t *testing.T) {
	bt := syntax.NewBindingTable()
	top := syntax.NewScope(syntax.LabelTop)
	intro := syntax.NewScope(syntax.LabelIntroduced)

	user := syntax.FromIdentifier("tmp", nil).AddScope(top, bt, 0)
	macro := user.AddScope(intro, bt, syntax.AllPhases)

	bt.Add(user, syntax.Gensym("tmp"), 0)
	bt.Add(macro, syntax.Gensym("tmp"), 0)

	decl := func(name *syntax.Syntax, v float64) term.Term {
		return &term.VariableDeclarationStatement{
			Declaration: &term.VariableDeclaration{
				Kind: "var",
				Declarators: []*term.VariableDeclarator{{
					Binding: &term.BindingIdentifier{Name: name},
					Init:    num(v),
				}},
			},
		}
	}

	got, err := GenerateAll([]term.Term{
		decl(user, 1),
		decl(macro, 2),
		stmt(&term.ObjectExpression{Properties: []term.Term{
			&term.ShorthandProperty{Name: macro},
		}}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "var tmp = 1;\nvar tmp$1 = 2;\n({tmp: tmp$1});"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_Templates(t *testing.T) {
	tmpl := &term.TemplateExpression{
		Tag: id("f"),
		Elements: []term.Term{
			&term.TemplateElement{RawValue: "a "},
			id("x"),
			&term.TemplateElement{RawValue: ""},
		},
	}

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"tagged", nil, "f`a ${x}`;"},
		{"tagged call", []Option{WithTaggedCalls(true)}, `f(["a ", ""], x);`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(stmt(tmpl), tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerate_Unsupported(t *testing.T) {
	_, err := Generate(&term.SwitchCase{})
	if !errors.Is(err, ErrGenerate) {
		t.Errorf("expected ErrGenerate, got %v", err)
	}
}
