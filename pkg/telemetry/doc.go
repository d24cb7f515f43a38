// Package telemetry groups the relay's observability packages.
//
// # Components
//
//   - logging: slog handler with request context fields and secret redaction
//   - metrics: Prometheus collectors for requests, streams, translation
//     decisions and backend health
//   - tracing: OpenTelemetry tracer, OTLP gRPC exporter and HTTP middleware
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, _ := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "relay.chat_completion")
//	defer span.End()
//	collector.RecordRequest("gemini-2.5-pro", "openai", true, "success", time.Second)
//
// # Secret Protection
//
// With redaction enabled, log values are masked before they are written:
//
//   - OpenAI keys: sk-abc12345... → sk-***
//   - Google keys: AIza... → AIza***
//   - Bearer tokens: Bearer abc → Bearer ***
//   - Emails: user@example.com → u***@example.com
//
// Custom redaction patterns can be configured.
package telemetry
