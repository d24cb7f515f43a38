package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Pattern is a named redaction rule. Replacement may reference capture
// groups with $1.
type Pattern struct {
	Name        string
	Pattern     string
	Replacement string
}

// Redactor masks secrets in log attribute values.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternOpenAIKey   = "openai_key"
	PatternGoogleKey   = "google_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternPassword    = "password"
)

// Order matters: bearer tokens are masked before the key patterns can
// partially rewrite them.
var defaultPatterns = []Pattern{
	{Name: PatternBearerToken, Pattern: `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, Replacement: "Bearer ***"},
	{Name: PatternOpenAIKey, Pattern: `sk-[a-zA-Z0-9_\-]{8,}`, Replacement: "sk-***"},
	{Name: PatternGoogleKey, Pattern: `AIza[0-9A-Za-z_\-]{35}`, Replacement: "AIza***"},
	{Name: PatternEmail, Pattern: `([a-zA-Z0-9._%+-])[a-zA-Z0-9._%+-]*@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`, Replacement: "$1***@$2"},
	{Name: PatternPassword, Pattern: `(password|passwd|pwd)[:=]\s*[^\s]+`, Replacement: "$1=***"},
}

var sensitiveKeys = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization", "private_key",
}

// NewRedactor compiles the built-in patterns followed by custom. It fails on
// the first custom pattern that does not compile.
func NewRedactor(custom []Pattern) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regexp.MustCompile(p.Pattern),
			replacement: p.Replacement,
		})
	}
	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, &redactPattern{name: p.Name, regex: re, replacement: p.Replacement})
	}
	return r, nil
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr masks a, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch {
	case v.Kind() == slog.KindGroup:
		group := v.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}

	case isSensitiveKey(a.Key):
		if v.Kind() == slog.KindString {
			return slog.String(a.Key, RedactAPIKey(v.String()))
		}
		return slog.String(a.Key, "***")

	case v.Kind() == slog.KindString:
		return slog.String(a.Key, r.RedactString(v.String()))
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// RedactAPIKey keeps the first four characters of a credential.
func RedactAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "***"
	}
	return key[:4] + "***"
}
