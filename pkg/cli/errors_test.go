package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  NewConfigError("reasoning.output_mode", "unknown output mode"),
			want: "config error in reasoning.output_mode: unknown output mode",
		},
		{
			name: "without field",
			err:  NewConfigError("", "failed to load config"),
			want: "config error: failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("run", underlying)

	if got, want := err.Error(), "command run failed: underlying error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is() should find the wrapped error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain", err: errors.New("boom"), want: ExitError},
		{name: "command", err: NewCommandError("run", errors.New("boom")), want: ExitError},
		{name: "config", err: NewConfigError("x", "bad"), want: ExitConfig},
		{name: "wrapped config", err: fmt.Errorf("startup: %w", NewConfigError("x", "bad")), want: ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
