package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/models"
	"mercator-hq/relay/pkg/proxy/handlers"
	"mercator-hq/relay/pkg/proxy/middleware"
	"mercator-hq/relay/pkg/stream"
	"mercator-hq/relay/pkg/telemetry/health"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// Health check names registered by the server.
const (
	CheckConfig  = "config"
	CheckBackend = "backend"
)

// Backend answers translated requests and reports its own health.
type Backend interface {
	handlers.Backend
	health.Pinger
}

// Server is the relay's HTTP server.
type Server struct {
	config       *config.Config
	configSource func() *config.Config
	backend      Backend
	models       *models.Registry
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	health       *health.Checker
	version      health.VersionInfo
	logger       *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the metrics collector. Without it no metrics are recorded
// and the metrics endpoint is not mounted.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer enables the tracing middleware.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the build information served on /version.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// WithConfigSource sets where handlers read their per-request config
// snapshot. The default is config.GetConfig.
func WithConfigSource(get func() *config.Config) Option {
	return func(s *Server) { s.configSource = get }
}

// WithModels sets the model table.
func WithModels(r *models.Registry) Option {
	return func(s *Server) { s.models = r }
}

// NewServer creates a server. cfg supplies listener settings and the route
// layout; request handling reads the config source on every request so hot
// reloads take effect without a restart.
func NewServer(cfg *config.Config, backend Backend, opts ...Option) *Server {
	s := &Server{
		config:       cfg,
		configSource: config.GetConfig,
		backend:      backend,
		models:       models.Default(),
		logger:       slog.Default(),
		version:      health.NewVersionInfo("dev", "", ""),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = health.New(cfg.Telemetry.Health.CheckTimeout)
	s.health.RegisterCheck(CheckConfig, health.ConfigCheck(s.configSource))
	s.health.RegisterCheck(CheckBackend, health.PingCheck(backend))
	s.health.SetObserver(func(name string, healthy bool, _ time.Duration) {
		if name == CheckBackend {
			s.metrics.UpdateBackendHealth(healthy)
		}
	})

	return s
}

// Start listens on the configured address and blocks until ctx is done, a
// SIGINT or SIGTERM arrives, Stop is called, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting relay server",
			"address", ln.Addr().String(),
			"output_mode", s.config.Reasoning.OutputMode,
			"backend", s.config.Backend.Type,
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, giving in-flight requests up to
// the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("relay server stopped")
	})

	return shutdownErr
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(&s.config.Server.CORS)(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	if s.tracer != nil {
		handler = tracing.HTTPMiddleware(s.tracer)(handler)
	}
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	chatOpts := []handlers.ChatOption{
		handlers.WithConfigSource(s.configSource),
		handlers.WithModels(s.models),
		handlers.WithMetrics(s.metrics),
		handlers.WithLogger(s.logger),
	}
	modelsHandler := handlers.NewModelsHandler(s.models, s.logger)

	mux.Handle("/v1/models", modelsHandler)

	if s.config.ServesAllModes() {
		// The unprefixed route keeps serving the default mode; every mode,
		// the default included, also gets its own prefix.
		mux.Handle("/v1/chat/completions", handlers.NewChatHandler(s.backend,
			append(chatOpts, handlers.WithOutputMode(stream.ModeOpenAI))...))
		for _, mode := range stream.Modes {
			prefix := "/" + mode.String()
			mux.Handle(prefix+"/v1/chat/completions", handlers.NewChatHandler(s.backend,
				append(chatOpts, handlers.WithOutputMode(mode))...))
			mux.Handle(prefix+"/v1/models", modelsHandler)
		}
	} else {
		mux.Handle("/v1/chat/completions", handlers.NewChatHandler(s.backend, chatOpts...))
	}

	health.Register(mux, s.health, s.config.Telemetry.Health, s.version)

	if s.metrics.Enabled() {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Health reports whether the server is running and every readiness check
// passes.
func (s *Server) Health(ctx context.Context) error {
	if !s.IsRunning() {
		return fmt.Errorf("server is not running")
	}
	status := s.health.CheckReadiness(ctx)
	if !status.Ready() {
		for _, name := range slices.Sorted(maps.Keys(status.Checks)) {
			if res := status.Checks[name]; res.Status != health.StatusOK {
				return fmt.Errorf("check %s failed: %s", name, res.Message)
			}
		}
		return fmt.Errorf("server not ready")
	}
	return nil
}

// Checker returns the readiness checker so callers can add checks.
func (s *Server) Checker() *health.Checker {
	return s.health
}
