package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output encoding.
type Format string

const (
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
	// FormatText writes logfmt-style key=value records.
	FormatText Format = "text"
)

// Config contains configuration for New.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is "json" or "text".
	Format string

	// AddSource includes file and line number in records.
	AddSource bool

	// RedactSecrets masks credentials in attribute values.
	RedactSecrets bool

	// RedactPatterns are applied after the built-in patterns.
	RedactPatterns []Pattern

	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New creates a logger for cfg.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var inner slog.Handler
	if format == FormatText {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	h := &Handler{inner: inner}
	if cfg.RedactSecrets {
		r, err := NewRedactor(cfg.RedactPatterns)
		if err != nil {
			return nil, err
		}
		h.redactor = r
	}
	return slog.New(h), nil
}

// Discard returns a logger that drops every record. Tests and library
// callers without a configured logger use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel parses a level name. The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// ParseFormat parses a format name. The empty string means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", s)
	}
}

// Handler decorates records with context fields and redacts attribute
// values before passing them on.
type Handler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewHandler wraps inner. A nil redactor disables redaction.
func NewHandler(inner slog.Handler, redactor *Redactor) *Handler {
	return &Handler{inner: inner, redactor: redactor}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	out.AddAttrs(contextAttrs(ctx)...)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &Handler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

func (h *Handler) redact(a slog.Attr) slog.Attr {
	if h.redactor == nil {
		return a
	}
	return h.redactor.RedactAttr(a)
}
