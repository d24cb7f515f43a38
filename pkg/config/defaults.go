package config

import (
	"slices"
	"time"
)

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxRequestBytes = 10 << 20
	DefaultCORSMaxAge      = 3600

	DefaultOutputMode   = "openai"
	DefaultToolPriority = "custom_first"

	DefaultBackendType    = "replay"
	DefaultFixturesDir    = "fixtures"
	DefaultFixture        = "default.jsonl"
	DefaultBackendTimeout = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "relay"
	DefaultMaxModelLabels   = 100

	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "relay"
	DefaultTracingTimeout     = 10 * time.Second

	DefaultLivenessPath  = "/health"
	DefaultReadinessPath = "/ready"
	DefaultCheckTimeout  = 2 * time.Second
)

// CORS defaults applied when the lists are empty.
var (
	DefaultCORSOrigins = []string{"*"}
	DefaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	DefaultCORSHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	DefaultCORSExposed = []string{"X-Request-ID", "X-Trace-ID"}
)

// DefaultRequestDurationBuckets covers streamed completions up to a minute.
var DefaultRequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

// Default returns a configuration with every default applied. Boolean
// settings whose default is true are only representable here, so files are
// decoded on top of this value.
func Default() *Config {
	cfg := &Config{}
	cfg.Reasoning.RealThinking = true
	cfg.Telemetry.Logging.RedactSecrets = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.MaxRequestBytes == 0 {
		s.MaxRequestBytes = DefaultMaxRequestBytes
	}
	c := &s.CORS
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = slices.Clone(DefaultCORSOrigins)
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = slices.Clone(DefaultCORSMethods)
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = slices.Clone(DefaultCORSHeaders)
	}
	if len(c.ExposedHeaders) == 0 {
		c.ExposedHeaders = slices.Clone(DefaultCORSExposed)
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}

	if cfg.Reasoning.OutputMode == "" {
		cfg.Reasoning.OutputMode = DefaultOutputMode
	}
	if cfg.Tools.Priority == "" {
		cfg.Tools.Priority = DefaultToolPriority
	}

	b := &cfg.Backend
	if b.Type == "" {
		b.Type = DefaultBackendType
	}
	if b.FixturesDir == "" {
		b.FixturesDir = DefaultFixturesDir
	}
	if b.DefaultFixture == "" {
		b.DefaultFixture = DefaultFixture
	}
	if b.Timeout == 0 {
		b.Timeout = DefaultBackendTimeout
	}

	l := &cfg.Telemetry.Logging
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.Format == "" {
		l.Format = DefaultLogFormat
	}

	m := &cfg.Telemetry.Metrics
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if len(m.RequestDurationBuckets) == 0 {
		m.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if m.MaxModelLabels == 0 {
		m.MaxModelLabels = DefaultMaxModelLabels
	}

	t := &cfg.Telemetry.Tracing
	if t.Sampler == "" {
		t.Sampler = DefaultTracingSampler
	}
	if t.SampleRatio == 0 && t.Sampler == "ratio" {
		t.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Endpoint == "" {
		t.Endpoint = DefaultTracingEndpoint
	}
	if t.ServiceName == "" {
		t.ServiceName = DefaultTracingServiceName
	}
	if t.Timeout == 0 {
		t.Timeout = DefaultTracingTimeout
	}

	h := &cfg.Telemetry.Health
	if h.LivenessPath == "" {
		h.LivenessPath = DefaultLivenessPath
	}
	if h.ReadinessPath == "" {
		h.ReadinessPath = DefaultReadinessPath
	}
	if h.CheckTimeout == 0 {
		h.CheckTimeout = DefaultCheckTimeout
	}
}
