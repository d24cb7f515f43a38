package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"mercator-hq/relay/internal/backend"
	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/server"
	"mercator-hq/relay/pkg/telemetry/health"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The server accepts OpenAI chat completion requests, translates them for the
configured Gemini backend and streams the answer back in the configured
output mode. The config file is watched and reloaded while the server runs.

Examples:
  # Start with defaults and environment overrides
  relay run

  # Start with a config file
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8080

  # Validate config without starting the server
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Snapshots are never mutated, so flag overrides go into a copy.
	cfg := *config.GetConfig()
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(&cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}
	config.SetConfig(&cfg)

	logger, err := newLogger(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	b, err := backend.New(cfg.Backend, backend.WithLogger(logger))
	if err != nil {
		return cli.NewConfigError("backend.type", err.Error())
	}

	if cfgFile != "" {
		watcher := config.NewWatcher(cfgFile, logger,
			config.WithReloadHook(func(next *config.Config) {
				collector.RecordConfigReload(true)
				if next.ServesAllModes() != cfg.ServesAllModes() {
					logger.Warn("output_mode route layout changed, restart to apply",
						"output_mode", next.Reasoning.OutputMode)
				}
			}),
			config.WithReloadErrorHook(func(error) {
				collector.RecordConfigReload(false)
			}),
		)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	opts := []server.Option{
		server.WithMetrics(collector),
		server.WithLogger(logger),
		server.WithVersion(health.NewVersionInfo(Version, GitCommit, BuildDate)),
		server.WithConfigSource(config.GetConfig),
	}
	if tracer.Enabled() {
		opts = append(opts, server.WithTracer(tracer))
	}

	logger.Info("relay configured",
		"listen_address", cfg.Server.ListenAddress,
		"output_mode", cfg.Reasoning.OutputMode,
		"real_thinking", cfg.Reasoning.RealThinking,
		"backend", cfg.Backend.Type,
		"metrics", collector.Enabled(),
		"tracing", tracer.Enabled(),
	)

	return server.NewServer(&cfg, b, opts...).Start(ctx)
}
