package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if !cfg.Reasoning.RealThinking {
		t.Error("RealThinking should default to true")
	}
	if cfg.Reasoning.OutputMode != "openai" {
		t.Errorf("OutputMode = %q", cfg.Reasoning.OutputMode)
	}
	if cfg.Tools.Priority != "custom_first" || cfg.Tools.NativeEnabled {
		t.Errorf("Tools = %+v", cfg.Tools)
	}
	if cfg.Safety != (SafetyConfig{}) {
		t.Errorf("Safety should default to empty thresholds, got %+v", cfg.Safety)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}
	if !cfg.Telemetry.Logging.RedactSecrets {
		t.Error("RedactSecrets should default to true")
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 for long streams", cfg.Server.WriteTimeout)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: 5s
reasoning:
  real_thinking: false
  output_mode: think-tags
safety:
  harassment: BLOCK_NONE
tools:
  native_enabled: true
  google_search: true
  priority: native_first
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("IdleTimeout default not applied: %v", cfg.Server.IdleTimeout)
	}
	if cfg.Reasoning.RealThinking {
		t.Error("RealThinking = true, want false from file")
	}
	if cfg.Reasoning.OutputMode != "think-tags" {
		t.Errorf("OutputMode = %q", cfg.Reasoning.OutputMode)
	}
	if cfg.Safety.Harassment != "BLOCK_NONE" {
		t.Errorf("Safety = %+v", cfg.Safety)
	}
	if !cfg.Tools.NativeEnabled || !cfg.Tools.GoogleSearch || cfg.Tools.Priority != "native_first" {
		t.Errorf("Tools = %+v", cfg.Tools)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if err == nil || !strings.Contains(err.Error(), "failed to read") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "server: [unclosed"))
		if err == nil || !strings.Contains(err.Error(), "failed to parse") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "reasoning:\n  output_mode: deepseek\n"))
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want ValidationError", err)
		}
		if verr.Errors[0].Field != "reasoning.output_mode" {
			t.Errorf("Field = %q", verr.Errors[0].Field)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "reasoning:\n  output_mode: openai\n")

	t.Setenv("ENABLE_REAL_THINKING", "false")
	t.Setenv("REASONING_OUTPUT_MODE", "r1")
	t.Setenv("GEMINI_MODERATION_HARASSMENT_THRESHOLD", "BLOCK_ONLY_HIGH")
	t.Setenv("GEMINI_MODERATION_HATE_SPEECH_THRESHOLD", "OFF")
	t.Setenv("GEMINI_MODERATION_SEXUALLY_EXPLICIT_THRESHOLD", "BLOCK_LOW_AND_ABOVE")
	t.Setenv("GEMINI_MODERATION_DANGEROUS_CONTENT_THRESHOLD", "BLOCK_MEDIUM_AND_ABOVE")
	t.Setenv("ENABLE_GEMINI_NATIVE_TOOLS", "true")
	t.Setenv("ENABLE_GOOGLE_SEARCH", "1")
	t.Setenv("ENABLE_URL_CONTEXT", "true")
	t.Setenv("GEMINI_TOOLS_PRIORITY", "native_first")
	t.Setenv("ALLOW_REQUEST_TOOL_CONTROL", "true")
	t.Setenv("RELAY_LISTEN_ADDRESS", ":7000")
	t.Setenv("RELAY_LOG_LEVEL", "warn")
	t.Setenv("RELAY_METRICS_ENABLED", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Reasoning.RealThinking {
		t.Error("RealThinking not overridden")
	}
	if cfg.Reasoning.OutputMode != "r1" {
		t.Errorf("OutputMode = %q", cfg.Reasoning.OutputMode)
	}
	want := SafetyConfig{
		Harassment:       "BLOCK_ONLY_HIGH",
		HateSpeech:       "OFF",
		SexuallyExplicit: "BLOCK_LOW_AND_ABOVE",
		DangerousContent: "BLOCK_MEDIUM_AND_ABOVE",
	}
	if cfg.Safety != want {
		t.Errorf("Safety = %+v, want %+v", cfg.Safety, want)
	}
	wantTools := ToolsConfig{NativeEnabled: true, GoogleSearch: true, URLContext: true, Priority: "native_first", AllowRequestControl: true}
	if cfg.Tools != wantTools {
		t.Errorf("Tools = %+v, want %+v", cfg.Tools, wantTools)
	}
	if cfg.Server.ListenAddress != ":7000" || cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("server/logging overrides not applied: %s %s", cfg.Server.ListenAddress, cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("unparsable bool should leave the default in place")
	}
}

func TestLoadConfigWithEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("GEMINI_TOOLS_PRIORITY", "random")
	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "tools.priority") {
		t.Errorf("error = %v, want tools.priority failure", err)
	}
}
