package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	p := Make(WithMode("cpu"), WithPath("/tmp/x"), WithQuiet(true), nil)

	want := Profiler{Mode: "cpu", Path: "/tmp/x", Quiet: true}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
}

func TestStart_NoMode(t *testing.T) {
	p := Make(WithPath(t.TempDir()))

	if p.Enabled() {
		t.Errorf("expected profiler without mode to be disabled")
	}

	// Must be safe to call.
	p.Start().Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	p := Make(WithMode("bogus"), WithPath(t.TempDir()), WithQuiet(true))

	if p.Enabled() {
		t.Errorf("expected unknown mode to be disabled")
	}

	p.Start().Stop()

	if slices.Contains(Modes(), "bogus") {
		t.Errorf("expected bogus not to be a supported mode, got %v", Modes())
	}
}
