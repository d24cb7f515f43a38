// Package middleware provides the HTTP middleware wrapped around every relay
// route.
//
// # Middleware Chain
//
// The server applies the chain outermost first:
//
//	RequestID -> tracing.HTTPMiddleware -> Logging -> Recovery -> CORS -> mux
//
// RequestID runs first so every later log line and span carries the id.
// Logging sits outside Recovery so a recovered panic is still logged as a
// 500 with its latency.
//
// # Request ID
//
// A client-supplied X-Request-ID is reused when it is printable ASCII of at
// most 128 bytes. Otherwise a UUID v4 is generated:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The id is stored with logging.WithRequestID, so any logger built by the
// logging package adds it to records logged with a context.
//
// # Streaming
//
// The logging wrapper implements http.Flusher and Unwrap. Chat completion
// streams flush each SSE frame through http.ResponseController, which finds
// the real connection through either.
package middleware
