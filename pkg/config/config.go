package config

import "time"

// Config is the root configuration structure for the relay.
type Config struct {
	// Server contains HTTP listener settings.
	Server ServerConfig `yaml:"server"`

	// Reasoning controls whether model thoughts are requested and how they
	// are surfaced to clients.
	Reasoning ReasoningConfig `yaml:"reasoning"`

	// Safety holds the per-category block thresholds sent to the backend.
	Safety SafetyConfig `yaml:"safety"`

	// Tools controls native backend tools and their priority over client
	// function tools.
	Tools ToolsConfig `yaml:"tools"`

	// Backend selects the event source that answers translated requests.
	Backend BackendConfig `yaml:"backend"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the host:port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the whole request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Streams can run long, so
	// zero (no timeout) is allowed.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is how long in-flight requests get on shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxRequestBytes limits the chat completion request body.
	// Default: 10485760 (10MB)
	MaxRequestBytes int64 `yaml:"max_request_bytes"`

	// CORS controls cross-origin headers for browser clients.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains cross-origin resource sharing settings.
type CORSConfig struct {
	// Enabled turns on CORS headers and preflight handling.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists permitted origins; "*" allows any.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders default: ["X-Request-ID", "X-Trace-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials sets Access-Control-Allow-Credentials.
	AllowCredentials bool `yaml:"allow_credentials"`
}

// ReasoningConfig controls model reasoning.
type ReasoningConfig struct {
	// RealThinking asks the backend to return thought summaries.
	// Env: ENABLE_REAL_THINKING. Default: true
	RealThinking bool `yaml:"real_thinking"`

	// OutputMode is one of "openai", "tagged", "hidden", "r1" (aliases
	// "field" and "think-tags" are accepted) or "all", which serves every
	// mode on its own route prefix.
	// Env: REASONING_OUTPUT_MODE. Default: "openai"
	OutputMode string `yaml:"output_mode"`
}

// SafetyConfig holds backend safety thresholds. An empty value leaves the
// category at the backend default.
type SafetyConfig struct {
	Harassment       string `yaml:"harassment"`
	HateSpeech       string `yaml:"hate_speech"`
	SexuallyExplicit string `yaml:"sexually_explicit"`
	DangerousContent string `yaml:"dangerous_content"`
}

// ToolsConfig controls backend-native tools.
type ToolsConfig struct {
	// NativeEnabled is the master switch for native tools.
	// Env: ENABLE_GEMINI_NATIVE_TOOLS. Default: false
	NativeEnabled bool `yaml:"native_enabled"`

	// GoogleSearch enables the search tool when native tools are on.
	// Env: ENABLE_GOOGLE_SEARCH
	GoogleSearch bool `yaml:"google_search"`

	// URLContext enables the URL context tool when native tools are on.
	// Env: ENABLE_URL_CONTEXT
	URLContext bool `yaml:"url_context"`

	// Priority is "custom_first" or "native_first" and decides which family
	// wins when a request carries function tools and native tools are on.
	// Env: GEMINI_TOOLS_PRIORITY. Default: "custom_first"
	Priority string `yaml:"priority"`

	// AllowRequestControl lets extra_body.enable_search and
	// extra_body.enable_url_context override the flags per request.
	// Env: ALLOW_REQUEST_TOOL_CONTROL. Default: false
	AllowRequestControl bool `yaml:"allow_request_control"`
}

// BackendConfig selects the chunk source.
type BackendConfig struct {
	// Type is the backend kind. Only "replay" is built in.
	// Default: "replay"
	Type string `yaml:"type"`

	// FixturesDir holds recorded chunk files named <model>.jsonl.
	// Default: "fixtures"
	FixturesDir string `yaml:"fixtures_dir"`

	// DefaultFixture is replayed for models without their own file.
	// Default: "default.jsonl"
	DefaultFixture string `yaml:"default_fixture"`

	// Timeout bounds a single backend stream.
	// Default: 5m
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Env: RELAY_LOG_LEVEL. Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Env: RELAY_LOG_FORMAT. Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and tokens in log fields.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns are extra redaction rules.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a custom log redaction rule.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Env: RELAY_METRICS_ENABLED. Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the exposition endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "relay"
	Namespace string `yaml:"namespace"`

	// Subsystem is an optional second prefix.
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are histogram buckets in seconds.
	// Default: [0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`

	// MaxModelLabels caps distinct model label values; later models are
	// reported as "other".
	// Default: 100
	MaxModelLabels int `yaml:"max_model_labels"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the ratio sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as service.name.
	// Default: "relay"
	ServiceName string `yaml:"service_name"`

	// Timeout bounds an export batch.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
