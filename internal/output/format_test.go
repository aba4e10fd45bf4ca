package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"  json  ", FormatJSON, false},
		{"cgf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if !ValidateFormat(FormatYAML) || !ValidateFormat(FormatJSON) {
		t.Error("expected yaml and json to validate")
	}
	if ValidateFormat(Format("xml")) {
		t.Error("expected xml to be invalid")
	}
}

func TestRender(t *testing.T) {
	payload := map[string]any{"coverage": 0.5, "scope": "HLC"}

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatYAML, payload); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(buf.String(), "scope: HLC") {
			t.Errorf("yaml output missing field: %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatJSON, payload); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(buf.String(), `"scope": "HLC"`) {
			t.Errorf("json output missing field: %q", buf.String())
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, Format("xml"), payload); err == nil {
			t.Error("expected error for invalid format")
		}
	})
}
