package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{" TRACE ", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"Text", FormatText},
		{"", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLevelsAndFormats(t *testing.T) {
	var levels []string
	for l := range Levels() {
		levels = append(levels, l)
	}

	if got := strings.Join(levels, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("expected all levels, got %q", got)
	}

	var formats []string
	for f := range Formats() {
		formats = append(formats, f)
	}

	if got := strings.Join(formats, ","); got != "json,text" {
		t.Errorf("expected all formats, got %q", got)
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
	l.Trace("expanding", slog.String("macro", "swap"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", rec["level"])
	}

	if rec["macro"] != "swap" {
		t.Errorf("expected macro attribute, got %v", rec["macro"])
	}

	if _, ok := rec["time"]; ok {
		t.Errorf("expected time to be omitted, got %v", rec["time"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelWarn))
	l.Info("hidden")
	l.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	l.Warn("shown")

	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn message, got %q", buf.String())
	}
}

func TestLogger_WrapAndWith(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatText), WithTimeLayout(""))
	child := base.Wrap(WithLevel(LevelDebug)).Component("modules")

	if base.Level() != DefaultLevel {
		t.Errorf("expected base level unchanged, got %v", base.Level())
	}

	if child.Level() != LevelDebug {
		t.Errorf("expected child level debug, got %v", child.Level())
	}

	child.Debug("loaded")

	out := buf.String()
	if !strings.Contains(out, "component=modules") {
		t.Errorf("expected component attribute, got %q", out)
	}

	if child.Format() != FormatText {
		t.Errorf("expected text format, got %v", child.Format())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Info("nothing")
	l.With(slog.Int("n", 1)).Error("nothing")

	if l.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", l.Level())
	}
}

func TestLogger_Pretty(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		l := Make(&buf, WithFormat(FormatText), WithPretty(true), WithTimeLayout("none"))
		l.With(slog.Bool("ok", true)).Info("done", slog.Int("items", 3))

		out := buf.String()
		for _, want := range []string{"info", "done", "items=", "3", "ok=", "true"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %q", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		l := Make(&buf, WithFormat(FormatJSON), WithPretty(true))
		l.Info("done", slog.Int("items", 3))

		if !strings.Contains(buf.String(), "\n  \"msg\": \"done\"") {
			t.Errorf("expected indented JSON, got %q", buf.String())
		}
	})
}

func TestMakeFormatTimeFunc(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-01-02T03:04:05Z"},
		{"kitchen", "3:04AM"},
		{"none", ""},
		{"", ""},
		{"2006", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
