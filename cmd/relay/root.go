package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay - OpenAI-compatible chat completions for Gemini models",
	Long: `Relay accepts OpenAI chat completion requests and answers them with
Gemini models.

It translates:
  - messages, images and tool results into Gemini contents
  - JSON schemas into the Gemini schema dialect
  - reasoning_effort and thinking budgets into a thinking configuration
  - function tools and native search tools into Gemini tools

and streams the answer back as OpenAI chunks, with reasoning surfaced in
the openai, tagged, hidden or r1 output mode.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration file named by --config with
// environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	patterns := make([]logging.Pattern, 0, len(cfg.RedactPatterns))
	for _, p := range cfg.RedactPatterns {
		patterns = append(patterns, logging.Pattern{Name: p.Name, Pattern: p.Pattern, Replacement: p.Replacement})
	}
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:          level,
		Format:         cfg.Format,
		AddSource:      cfg.AddSource,
		RedactSecrets:  cfg.RedactSecrets,
		RedactPatterns: patterns,
		Writer:         os.Stderr,
	})
}
