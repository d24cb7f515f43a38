// Package tracing provides OpenTelemetry tracing for the relay.
//
// Spans are exported over OTLP gRPC. Incoming W3C traceparent headers are
// honoured: every sampler is parent based, so a sampled caller gets a sampled
// relay span. When tracing is disabled the tracer is a noop.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler = tracing.HTTPMiddleware(tracer)(handler)
//
// Handlers add relay attributes with the Set*Attributes helpers:
//
//	span := tracing.SpanFromContext(ctx)
//	tracing.SetRequestAttributes(span, requestID, "gemini-2.5-pro", "openai", true)
package tracing
