package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
		ApplyDefaults(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads the file at path and applies environment
// overrides, which always take precedence over the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	envBool("ENABLE_REAL_THINKING", &cfg.Reasoning.RealThinking)
	envString("REASONING_OUTPUT_MODE", &cfg.Reasoning.OutputMode)

	envString("GEMINI_MODERATION_HARASSMENT_THRESHOLD", &cfg.Safety.Harassment)
	envString("GEMINI_MODERATION_HATE_SPEECH_THRESHOLD", &cfg.Safety.HateSpeech)
	envString("GEMINI_MODERATION_SEXUALLY_EXPLICIT_THRESHOLD", &cfg.Safety.SexuallyExplicit)
	envString("GEMINI_MODERATION_DANGEROUS_CONTENT_THRESHOLD", &cfg.Safety.DangerousContent)

	envBool("ENABLE_GEMINI_NATIVE_TOOLS", &cfg.Tools.NativeEnabled)
	envBool("ENABLE_GOOGLE_SEARCH", &cfg.Tools.GoogleSearch)
	envBool("ENABLE_URL_CONTEXT", &cfg.Tools.URLContext)
	envString("GEMINI_TOOLS_PRIORITY", &cfg.Tools.Priority)
	envBool("ALLOW_REQUEST_TOOL_CONTROL", &cfg.Tools.AllowRequestControl)

	envString("RELAY_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envBool("RELAY_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	envString("RELAY_FIXTURES_DIR", &cfg.Backend.FixturesDir)
	envString("RELAY_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("RELAY_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("RELAY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("RELAY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("RELAY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv("RELAY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dst = val
	}
}

// envBool accepts strconv booleans; unparsable values are ignored.
func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			*dst = b
		}
	}
}
