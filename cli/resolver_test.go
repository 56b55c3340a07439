package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want config
	}{
		{
			"flat",
			"log_level: debug\nlog_pretty: false\n",
			config{"log_level": "debug", "log_pretty": false},
		},
		{
			"nested",
			"config:\n  log-format: json\n",
			config{"log-format": "json"},
		},
		{
			"numbers as strings",
			"indent: 4\nratio: 0.5\n",
			config{"indent": "4", "ratio": "0.5"},
		},
		{
			"list",
			"include:\n  - a\n  - b\n",
			config{"include": []any{"a", "b"}},
		},
		{
			"not a mapping",
			"- a\n- b\n",
			config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseConfig([]byte(tt.src))); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Cached(t *testing.T) {
	const src = "log_level: error\n"

	a, err := resolve(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := resolve(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reflect.ValueOf(a).Pointer() != reflect.ValueOf(b).Pointer() {
		t.Error("expected the cached config for identical content")
	}
}

func TestResolve_Flags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	src := "log_level: debug\ninclude:\n  - /a\n  - /b\n"

	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		LogLevel string   `default:"info"`
		Include  []string ``
		Other    string   `default:"kept"`
	}

	parser, err := kong.New(&cli, kong.Configuration(resolve, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatal(err)
	}

	if cli.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cli.LogLevel)
	}

	if diff := cmp.Diff([]string{"/a", "/b"}, cli.Include); diff != "" {
		t.Errorf("unexpected include (-want +got):\n%s", diff)
	}

	if cli.Other != "kept" {
		t.Errorf("expected default to be kept, got %q", cli.Other)
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantLevel  logLevel
		wantPretty bool
		wantCaller bool
	}{
		{"separate value", []string{"--log-level", "debug"}, "debug", true, false},
		{"assigned value", []string{"--log-level=error", "--no-log-pretty"}, "error", false, false},
		{"boolean assigned", []string{"--log-caller=true", "--log-pretty=false"}, "", false, true},
		{"negated assigned", []string{"--no-log-caller=false"}, "", true, true},
		{"unrelated", []string{"expand", "-"}, "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.wantLevel || f.Pretty != tt.wantPretty || f.Caller != tt.wantCaller {
				t.Errorf("expected (%q, %v, %v), got (%q, %v, %v)",
					tt.wantLevel, tt.wantPretty, tt.wantCaller,
					f.Level, f.Pretty, f.Caller)
			}
		})
	}
}
