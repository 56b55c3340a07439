package store

import (
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKey(t *testing.T) {
	if got, want := Key("./m.js", "id", 1), "./m.js:id:1"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStore_ZeroValue(t *testing.T) {
	var s Store

	if s.Has("x") {
		t.Errorf("expected empty store")
	}

	s.Set("x", 1)

	if v, ok := s.Get("x"); !ok || v != 1 {
		t.Errorf("expected 1, got %v (%v)", v, ok)
	}
}

func TestStore_Keys(t *testing.T) {
	s := New()
	s.Set("b", 2)
	s.Set("a", 1)

	if diff := cmp.Diff([]string{"a", "b"}, slices.Collect(s.Keys())); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Exports(t *testing.T) {
	s := New()
	s.Set(Key("m", "a", 0), "a0")
	s.Set(Key("m", "a", 1), "a1")
	s.Set("local#3", "l")

	want := map[string]any{"m:a": "a1"}
	if diff := cmp.Diff(want, s.Exports(1)); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := New()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			s.Set(Key("m", "v", 0), i)
			_, _ = s.Get(Key("m", "v", 0))
		}()
	}

	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("expected 1 key, got %d", s.Len())
	}
}
