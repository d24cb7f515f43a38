package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// in OpenAI error format. The panic and stack trace are logged; clients only
// see a generic message. http.ErrAbortHandler is re-raised so the server can
// abort the connection as usual.
//
// Example usage:
//
//	handler = RecoveryMiddleware(logger)(handler)
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				errResp := types.NewServerError("An internal error occurred. Please try again later.")
				_ = proxy.WriteErrorResponse(w, errResp)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
