package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output.
	FormatJSON OutputFormat = "json"
	// FormatYAML is YAML output.
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat resolves a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// TextFormatter formats output as plain text. Values implementing
// fmt.Stringer use their String method.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data any) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON. HTML characters are not escaped so
// tags in model output stay readable.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML. Values are passed through JSON
// first so struct json tags decide the field names.
type YAMLFormatter struct{}

// Format converts data to YAML format.
func (f *YAMLFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in YAML format.
func (f *YAMLFormatter) FormatTo(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// NewFormatterFor parses s and returns the matching formatter.
func NewFormatterFor(s string) (Formatter, error) {
	format, err := ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return NewFormatter(format), nil
}
