package middleware

import (
	"net/http"
	"unicode"

	"github.com/google/uuid"

	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/telemetry/logging"
)

// maxRequestIDLength bounds client-supplied ids echoed back in headers and
// logs.
const maxRequestIDLength = 128

// RequestIDMiddleware assigns each request an id, stores it in the context
// for logging and echoes it in the X-Request-ID response header. A
// well-formed id supplied by the client is reused; otherwise a UUID is
// generated.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := proxy.ExtractRequestID(r)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(proxy.RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
