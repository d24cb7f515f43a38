package cli

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Model  string `json:"model"`
	Budget int    `json:"thinkingBudget"`
	Note   string `json:"note,omitempty"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatters(t *testing.T) {
	data := sample{Model: "gemini-2.5-pro", Budget: 32768, Note: "<thinking>"}

	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{format: FormatText, want: []string{"gemini-2.5-pro", "32768"}},
		{format: FormatJSON, want: []string{`"model": "gemini-2.5-pro"`, `"thinkingBudget": 32768`, `"note": "<thinking>"`}},
		{format: FormatYAML, want: []string{"model: gemini-2.5-pro", "thinkingBudget: 32768", "note: <thinking>"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)

			var buf bytes.Buffer
			if err := f.FormatTo(&buf, data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			out, err := f.Format(data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(out) != buf.String() {
				t.Errorf("Format() and FormatTo() disagree:\n%s\n%s", out, buf.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestNewFormatterFor(t *testing.T) {
	if _, err := NewFormatterFor("xml"); err == nil {
		t.Error("NewFormatterFor(xml) error = nil, want error")
	}
	f, err := NewFormatterFor("json")
	if err != nil {
		t.Fatalf("NewFormatterFor(json) error = %v", err)
	}
	if _, ok := f.(*JSONFormatter); !ok {
		t.Errorf("NewFormatterFor(json) = %T, want *JSONFormatter", f)
	}
}
