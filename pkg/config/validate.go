package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/stream"
	"mercator-hq/relay/pkg/translate"
)

// OutputModeAll serves every output mode on its own route prefix.
const OutputModeAll = "all"

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateReasoning(&cfg.Reasoning)...)
	errs = append(errs, validateSafety(&cfg.Safety)...)
	errs = append(errs, validateTools(&cfg.Tools)...)
	errs = append(errs, validateBackend(&cfg.Backend)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	}
	for field, d := range map[string]time.Duration{
		"server.read_timeout":     cfg.ReadTimeout,
		"server.write_timeout":    cfg.WriteTimeout,
		"server.idle_timeout":     cfg.IdleTimeout,
		"server.shutdown_timeout": cfg.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, FieldError{Field: field, Message: "timeout must not be negative"})
		}
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "max header bytes must be non-negative"})
	}
	if cfg.MaxRequestBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_request_bytes", Message: "max request bytes must be non-negative"})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "server.cors.max_age", Message: "max age must be non-negative"})
	}
	if cfg.CORS.AllowCredentials && slices.Contains(cfg.CORS.AllowedOrigins, "*") {
		errs = append(errs, FieldError{Field: "server.cors.allow_credentials", Message: "credentials cannot be allowed for wildcard origins"})
	}

	// Map iteration order is random; keep the report stable.
	slices.SortFunc(errs, func(a, b FieldError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func validateReasoning(cfg *ReasoningConfig) []FieldError {
	if strings.EqualFold(strings.TrimSpace(cfg.OutputMode), OutputModeAll) {
		return nil
	}
	if _, err := stream.ParseOutputMode(cfg.OutputMode); err != nil {
		return []FieldError{{
			Field:   "reasoning.output_mode",
			Message: fmt.Sprintf("invalid output mode %q: must be 'openai', 'tagged', 'hidden', 'r1' or 'all'", cfg.OutputMode),
		}}
	}
	return nil
}

func validateSafety(cfg *SafetyConfig) []FieldError {
	var errs []FieldError
	check := func(field, value string) {
		if value == "" || slices.Contains(gemini.Thresholds, strings.TrimSpace(value)) {
			return
		}
		errs = append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("invalid threshold %q: must be one of %s", value, strings.Join(gemini.Thresholds, ", ")),
		})
	}
	check("safety.harassment", cfg.Harassment)
	check("safety.hate_speech", cfg.HateSpeech)
	check("safety.sexually_explicit", cfg.SexuallyExplicit)
	check("safety.dangerous_content", cfg.DangerousContent)
	return errs
}

func validateTools(cfg *ToolsConfig) []FieldError {
	if _, ok := translate.ParseToolPriority(cfg.Priority); !ok {
		return []FieldError{{
			Field:   "tools.priority",
			Message: fmt.Sprintf("invalid priority %q: must be 'custom_first' or 'native_first'", cfg.Priority),
		}}
	}
	return nil
}

func validateBackend(cfg *BackendConfig) []FieldError {
	var errs []FieldError
	if cfg.Type != "replay" {
		errs = append(errs, FieldError{Field: "backend.type", Message: fmt.Sprintf("unsupported backend %q: must be 'replay'", cfg.Type)})
	}
	if cfg.FixturesDir == "" {
		errs = append(errs, FieldError{Field: "backend.fixtures_dir", Message: "fixtures directory is required"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "backend.timeout", Message: "timeout must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}
	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}
	if cfg.Metrics.MaxModelLabels < 0 {
		errs = append(errs, FieldError{Field: "telemetry.metrics.max_model_labels", Message: "must be non-negative"})
	}

	if !slices.Contains([]string{"always", "never", "ratio"}, cfg.Tracing.Sampler) {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never' or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "sample ratio must be between 0.0 and 1.0"})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "tracing endpoint is required when tracing is enabled"})
	}

	for field, p := range map[string]string{
		"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
		"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, FieldError{Field: field, Message: "path must start with /"})
		}
	}
	if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{Field: "telemetry.health.check_timeout", Message: "check timeout must be between 0 and 60s"})
	}

	return errs
}
