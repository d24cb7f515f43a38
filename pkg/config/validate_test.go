package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "mode all", mutate: func(c *Config) { c.Reasoning.OutputMode = "all" }},
		{name: "mode alias", mutate: func(c *Config) { c.Reasoning.OutputMode = "field" }},
		{name: "bad mode", mutate: func(c *Config) { c.Reasoning.OutputMode = "xml" }, wantField: "reasoning.output_mode"},
		{name: "empty listen", mutate: func(c *Config) { c.Server.ListenAddress = "" }, wantField: "server.listen_address"},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -1 }, wantField: "server.read_timeout"},
		{name: "bad threshold", mutate: func(c *Config) { c.Safety.HateSpeech = "BLOCK_ALL" }, wantField: "safety.hate_speech"},
		{name: "good threshold", mutate: func(c *Config) { c.Safety.DangerousContent = "BLOCK_NONE" }},
		{name: "bad priority", mutate: func(c *Config) { c.Tools.Priority = "both" }, wantField: "tools.priority"},
		{name: "bad backend", mutate: func(c *Config) { c.Backend.Type = "vertex" }, wantField: "backend.type"},
		{name: "bad level", mutate: func(c *Config) { c.Telemetry.Logging.Level = "trace" }, wantField: "telemetry.logging.level"},
		{name: "bad format", mutate: func(c *Config) { c.Telemetry.Logging.Format = "xml" }, wantField: "telemetry.logging.format"},
		{
			name: "bad redact pattern",
			mutate: func(c *Config) {
				c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "x", Pattern: "("}}
			},
			wantField: "telemetry.logging.redact_patterns[0].pattern",
		},
		{name: "metrics path", mutate: func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, wantField: "telemetry.metrics.path"},
		{name: "sampler", mutate: func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, wantField: "telemetry.tracing.sampler"},
		{name: "ratio", mutate: func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, wantField: "telemetry.tracing.sample_ratio"},
		{
			name: "tracing endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
			},
			wantField: "telemetry.tracing.endpoint",
		},
		{name: "readiness path", mutate: func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" }, wantField: "telemetry.health.readiness_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %s", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.ListenAddress = ""
	cfg.Tools.Priority = "x"
	cfg.Telemetry.Logging.Level = "x"

	var verr ValidationError
	if !errors.As(Validate(cfg), &verr) {
		t.Fatal("expected ValidationError")
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(verr.Errors), verr.Errors)
	}
}
