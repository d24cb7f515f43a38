// Package server wires the relay's HTTP surface together.
//
// # Routes
//
//	POST /v1/chat/completions           chat completions in the configured mode
//	POST /{mode}/v1/chat/completions    one route per output mode, when
//	                                    reasoning.output_mode is "all"
//	GET  /v1/models                     model listing
//	GET  /health, /ready, /version      probes (paths configurable)
//	GET  /metrics                       Prometheus exposition, when enabled
//
// # Middleware
//
// Every route runs inside RequestID, tracing (when a tracer is set),
// Logging, Recovery and CORS, outermost first. See package middleware.
//
// # Configuration
//
// The *config.Config passed to NewServer fixes listener settings and the
// route layout. Handlers read a fresh snapshot from the config source on
// every request, so a hot reload changes reasoning, tools and safety
// settings immediately. Switching output_mode to or from "all" needs a
// restart because it changes the routes.
//
// # Lifecycle
//
//	srv := server.NewServer(cfg, backend,
//	    server.WithMetrics(collector),
//	    server.WithTracer(tracer),
//	    server.WithLogger(logger),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is done, SIGINT or SIGTERM arrives, or Stop is
// called, then drains in-flight requests for up to
// server.shutdown_timeout.
package server
