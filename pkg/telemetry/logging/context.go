package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	modelKey     contextKey = "model"
	modeKey      contextKey = "output_mode"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithModel adds the requested model to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, modelKey, model)
}

// Model retrieves the requested model from the context.
func Model(ctx context.Context) string {
	v, _ := ctx.Value(modelKey).(string)
	return v
}

// WithOutputMode adds the stream output mode to the context.
func WithOutputMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, modeKey, mode)
}

// OutputMode retrieves the stream output mode from the context.
func OutputMode(ctx context.Context) string {
	v, _ := ctx.Value(modeKey).(string)
	return v
}

// contextAttrs returns the request-scoped fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(requestIDKey), v))
	}
	if v := Model(ctx); v != "" {
		attrs = append(attrs, slog.String(string(modelKey), v))
	}
	if v := OutputMode(ctx); v != "" {
		attrs = append(attrs, slog.String(string(modeKey), v))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}
