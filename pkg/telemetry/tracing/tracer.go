package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"

	"mercator-hq/relay/pkg/config"
)

const instrumentationName = "mercator-hq/relay"

// Tracer wraps the OpenTelemetry tracer provider used by the relay.
type Tracer struct {
	config   config.TracingConfig
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// Option configures New.
type Option func(*tracerOptions)

type tracerOptions struct {
	version  string
	exporter sdktrace.SpanExporter
	global   bool
}

// WithVersion sets the service.version resource attribute.
func WithVersion(v string) Option {
	return func(o *tracerOptions) { o.version = v }
}

// WithExporter replaces the OTLP exporter. Spans are exported synchronously
// so tests can inspect them right after End.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *tracerOptions) { o.exporter = exp }
}

// WithoutGlobal keeps the provider and propagator out of the otel globals.
func WithoutGlobal() Option {
	return func(o *tracerOptions) { o.global = false }
}

// New creates a Tracer. When tracing is disabled the tracer is a noop and
// Shutdown does nothing.
//
// The tracer must be shut down before exit so buffered spans are flushed:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig, opts ...Option) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	o := tracerOptions{version: "dev", global: true}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tracer{config: *cfg, enabled: cfg.Enabled}

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(instrumentationName)
		return t, nil
	}

	sampler, err := createSampler(cfg.Sampler, cfg.SampleRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(o.version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}
	if o.exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithSyncer(o.exporter))
	} else {
		exporter, err := createOTLPExporter(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	t.provider = sdktrace.NewTracerProvider(providerOpts...)
	t.tracer = t.provider.Tracer(instrumentationName)

	if o.global {
		otel.SetTracerProvider(t.provider)
		otel.SetTextMapPropagator(
			propagation.NewCompositeTextMapPropagator(
				propagation.TraceContext{},
				propagation.Baggage{},
			),
		)
	}

	return t, nil
}

// createOTLPExporter creates an OTLP gRPC exporter. The connection is made
// lazily, so an unreachable collector does not block startup.
func createOTLPExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// Start creates a span that is a child of any span in ctx.
//
//	ctx, span := tracer.Start(ctx, "translate")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled returns whether tracing is enabled.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// SpanFromContext returns the current span, or a noop span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceID returns the trace id in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span id in ctx, or "" when there is none.
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}

// SetError records err on the span.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
	span.RecordError(err)
}

// SetStatus sets the span status from err.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
