package syntax

import (
	"errors"
	"strings"
	"testing"
)

func ident(name string, bt *BindingTable, scopes ...Scope) *Syntax {
	s := FromIdentifier(name, nil)
	for _, sc := range scopes {
		s = s.AddScope(sc, bt, 0)
	}

	return s
}

func TestResolve_GreatestSubset(t *testing.T) {
	bt := NewBindingTable()
	a, b, c := NewScope("a"), NewScope("b"), NewScope("c")

	outer := Gensym("x")
	inner := Gensym("x")

	bt.Add(ident("x", bt, a), outer, 0)
	bt.Add(ident("x", bt, a, b), inner, 0)

	tests := []struct {
		name   string
		scopes []Scope
		want   Binding
	}{
		{"outer only", []Scope{a}, outer},
		{"inner", []Scope{a, b}, inner},
		{"extra scope", []Scope{a, b, c}, inner},
		{"unrelated", []Scope{a, c}, outer},
		{"free", []Scope{c}, Free("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ident("x", bt, tt.scopes...).Resolve(0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	bt := NewBindingTable()
	a, b, c := NewScope("a"), NewScope("b"), NewScope("c")

	bt.Add(ident("x", bt, a, b), Gensym("x"), 0)
	bt.Add(ident("x", bt, b, c), Gensym("x"), 0)
	bt.Add(ident("x", bt, a, c), Gensym("x"), 0)

	_, err := ident("x", bt, a, b, c).Resolve(0)
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}

	for _, tied := range []ScopeSet{{a, b}, {b, c}, {a, c}} {
		if !strings.Contains(err.Error(), tied.String()) {
			t.Errorf("expected %s among the candidates, got %q", tied, err.Error())
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	bt := NewBindingTable()
	a, b := NewScope("a"), NewScope("b")
	bt.Add(ident("y", bt, a), Gensym("y"), 0)
	bt.Add(ident("y", bt, a, b), Gensym("y"), 0)

	s := ident("y", bt, a, b)

	first, err := s.Resolve(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 10 {
		if got, _ := s.Resolve(0); got != first {
			t.Fatalf("expected %s on every call, got %s", first, got)
		}
	}
}

func TestResolve_Alias(t *testing.T) {
	bt := NewBindingTable()
	a, b := NewScope("a"), NewScope("b")

	target := Gensym("m")
	bt.Add(ident("m", bt, a), target, 0)

	// n in scope b forwards to m in scope a
	bt.AddForward(ident("n", bt, b), ident("m", bt, a), Gensym("n"), 0)

	got, err := ident("n", bt, b).Resolve(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != target {
		t.Errorf("expected %s, got %s", target, got)
	}
}

func TestBindingTable_AddDuplicate(t *testing.T) {
	bt := NewBindingTable()
	a := NewScope("a")

	first := bt.Add(ident("v", bt, a), Gensym("v"), 0)
	second := bt.Add(ident("v", bt, a), Gensym("v"), 0)

	if first != second {
		t.Errorf("expected duplicate declaration to reuse %s, got %s", first, second)
	}

	if n := len(bt.Records("v")); n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}

func TestResolve_PhaseSeparation(t *testing.T) {
	bt := NewBindingTable()
	top := NewScope(LabelTop)

	b := Gensym("z")
	bt.Add(FromIdentifier("z", nil).AddScope(top, bt, 0), b, 0)

	s := FromIdentifier("z", nil).AddScope(top, bt, 0)

	if got, _ := s.Resolve(0); got != b {
		t.Errorf("expected %s at phase 0, got %s", b, got)
	}

	if got, _ := s.Resolve(1); !got.IsFree() {
		t.Errorf("expected free binding at phase 1, got %s", got)
	}
}

func TestSyntax_FlipAndRemove(t *testing.T) {
	sc := NewScope(LabelIntroduced)
	base := FromParens([]*Syntax{FromIdentifier("a", nil)}, nil)

	added := base.FlipScope(sc, nil, AllPhases)
	if !added.Inner()[0].AllScopes().Contains(sc) {
		t.Fatalf("expected flip to add scope to inner syntax")
	}

	flipped := added.FlipScope(sc, nil, AllPhases)
	if flipped.Inner()[0].AllScopes().Contains(sc) {
		t.Errorf("expected second flip to remove scope")
	}

	removed := added.RemoveScope(sc, 0)
	if removed.AllScopes().Contains(sc) {
		t.Errorf("expected RemoveScope to fall back to the all-phases set")
	}

	if len(base.Inner()[0].AllScopes()) != 0 {
		t.Errorf("expected original syntax to be unchanged, got %s",
			base.Inner()[0].AllScopes())
	}
}

func TestSyntax_Is(t *testing.T) {
	tests := []struct {
		name string
		stx  *Syntax
		kind Kind
		vals []string
		want bool
	}{
		{"identifier", FromIdentifier("foo", nil), KindIdentifier, nil, true},
		{"value match", FromPunctuator("+", nil), KindPunctuator, []string{"-", "+"}, true},
		{"value mismatch", FromPunctuator("*", nil), KindPunctuator, []string{"+"}, false},
		{"delimiter", FromBraces(nil, nil), KindDelimiter, nil, false},
		{"nil", nil, KindIdentifier, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stx.Is(tt.kind, tt.vals...); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	bt := NewBindingTable()
	sc := NewScope(LabelFunction)

	items := []*Syntax{
		FromIdentifier("f", nil).AddScope(sc, bt, AllPhases),
		FromParens([]*Syntax{
			FromNumber(1, nil),
			FromPunctuator(",", nil),
			FromString("two", nil),
		}, nil).AddScope(sc, bt, 0),
	}

	src, err := Marshal(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Unmarshal(src, bt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}

	for i := range items {
		if want, have := items[i].String(), got[i].String(); want != have {
			t.Errorf("item %d: expected %q, got %q", i, want, have)
		}
	}

	if !got[0].AllScopes().Contains(sc) {
		t.Errorf("expected all-phases scope to survive, got %s", got[0].AllScopes())
	}

	if !got[1].Inner()[2].PhaseScopes(0).Contains(sc) {
		t.Errorf("expected phase 0 scope to survive, got %s",
			got[1].Inner()[2].PhaseScopes(0))
	}

	if got[0].Bindings() != bt {
		t.Errorf("expected decoded syntax to use the supplied binding table")
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	if _, err := Unmarshal(`[{k: bogus}]`, nil); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}
