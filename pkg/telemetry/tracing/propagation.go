package tracing

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceID carries the trace id back to the client.
const HeaderTraceID = "X-Trace-ID"

// Propagator returns the global text map propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract returns ctx with the trace context found in headers, if any.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers.
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// HTTPMiddleware extracts the incoming trace context and wraps each request
// in a server span named after the method and path. The trace id is echoed in
// the X-Trace-ID response header.
func HTTPMiddleware(t *Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := Extract(r.Context(), r.Header)

			ctx, span := t.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(r.Method),
					semconv.HTTPTarget(r.URL.Path),
				),
			)
			defer span.End()

			if tp := r.Header.Get("traceparent"); tp != "" && !ValidateTraceParent(tp) {
				span.SetAttributes(attribute.Bool(AttrTraceParentInvalid, true))
			}
			if sc := span.SpanContext(); sc.IsValid() {
				w.Header().Set(HeaderTraceID, sc.TraceID().String())
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(semconv.HTTPStatusCode(sw.status))
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, strconv.Itoa(sw.status))
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// ValidateTraceParent reports whether traceparent has the W3C
// version-trace_id-parent_id-trace_flags layout with non-zero ids.
//
// Example: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}
	if len(parts[0]) != 2 || !isHexString(parts[0]) {
		return false
	}
	if len(parts[1]) != 32 || !isHexString(parts[1]) {
		return false
	}
	if len(parts[2]) != 16 || !isHexString(parts[2]) {
		return false
	}
	if len(parts[3]) != 2 || !isHexString(parts[3]) {
		return false
	}
	if parts[1] == "00000000000000000000000000000000" || parts[2] == "0000000000000000" {
		return false
	}
	return true
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// IsSampledFromTraceParent reports whether the sampled flag is set in a
// valid traceparent header.
func IsSampledFromTraceParent(traceparent string) bool {
	if !ValidateTraceParent(traceparent) {
		return false
	}
	flags, err := strconv.ParseUint(traceparent[len(traceparent)-2:], 16, 8)
	if err != nil {
		return false
	}
	return flags&0x01 == 0x01
}
