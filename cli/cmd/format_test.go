package cmd

import (
	"bytes"
	"context"
	"testing"
)

func TestEncode(t *testing.T) {
	v := map[string]any{"kind": "identifier", "value": "x"}

	tests := []struct {
		name   string
		format string
		indent int
		want   string
	}{
		{"json compact", formatJSON, 0, "{\"kind\":\"identifier\",\"value\":\"x\"}\n"},
		{"json indented", formatJSON, 2, "{\n  \"kind\": \"identifier\",\n  \"value\": \"x\"\n}\n"},
		{"yaml", formatYAML, 2, "kind: identifier\nvalue: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := encode(context.Background(), &buf, tt.format, tt.indent, v); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
