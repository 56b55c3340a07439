package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stx/syntax"
)

func TestName(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{&BinaryExpression{}, "BinaryExpression"},
		{&EOF{}, "EOF"},
		{nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Name(tt.term); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAddScope_Deep(t *testing.T) {
	sc := syntax.NewScope(syntax.LabelFunction)
	x := syntax.FromIdentifier("x", nil)
	raw := syntax.FromIdentifier("y", nil)

	orig := &CallExpression{
		Callee:    &IdentifierExpression{Name: x},
		Arguments: []Item{raw, &LiteralNullExpression{}},
	}

	got, ok := AddScope(orig, sc, nil, syntax.AllPhases).(*CallExpression)
	if !ok {
		t.Fatalf("expected *CallExpression, got %T", got)
	}

	callee := got.Callee.(*IdentifierExpression) //nolint:forcetypeassert
	if !callee.Name.AllScopes().Contains(sc) {
		t.Errorf("expected callee to carry %s", sc)
	}

	arg, ok := AsSyntax(got.Arguments[0])
	if !ok || !arg.AllScopes().Contains(sc) {
		t.Errorf("expected raw argument to carry %s", sc)
	}

	if orig.Callee.(*IdentifierExpression).Name.AllScopes().Contains(sc) { //nolint:forcetypeassert
		t.Errorf("expected original term to be unchanged")
	}

	if _, ok := got.Arguments[1].(*LiteralNullExpression); !ok {
		t.Errorf("expected term argument to survive, got %T", got.Arguments[1])
	}
}

func TestMap_NilFields(t *testing.T) {
	orig := &ReturnStatement{}

	got := MapTerm(orig, func(s *syntax.Syntax) *syntax.Syntax { return s })
	if r, ok := got.(*ReturnStatement); !ok || r.Expression != nil {
		t.Errorf("expected empty return statement, got %#v", got)
	}
}

func TestBoundNames(t *testing.T) {
	id := func(n string) *BindingIdentifier {
		return &BindingIdentifier{Name: syntax.FromIdentifier(n, nil)}
	}

	pattern := &ArrayBinding{
		Elements: []Term{
			id("a"),
			nil,
			&BindingWithDefault{Binding: id("b"), Init: &LiteralNullExpression{}},
			&ObjectBinding{Properties: []Term{
				&BindingPropertyIdentifier{Binding: id("c")},
				&BindingPropertyProperty{
					Name:    &StaticPropertyName{Value: syntax.FromIdentifier("k", nil)},
					Binding: id("d"),
				},
			}},
		},
		RestElement: id("e"),
	}

	var got []string
	for _, n := range BoundNames(pattern) {
		got = append(got, n.Val())
	}

	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, got); diff != "" {
		t.Errorf("bound names mismatch (-want +got):\n%s", diff)
	}
}

func TestTree(t *testing.T) {
	tree := Tree(&BinaryExpression{
		Left:     &IdentifierExpression{Name: syntax.FromIdentifier("a", nil)},
		Operator: syntax.FromPunctuator("+", nil),
		Right:    &LiteralNumericExpression{Value: syntax.FromNumber(1, nil)},
	})

	want := map[string]any{
		"type":     "BinaryExpression",
		"left":     map[string]any{"type": "IdentifierExpression", "name": "a"},
		"operator": "+",
		"right":    map[string]any{"type": "LiteralNumericExpression", "value": "1"},
	}

	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
