package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/relay/pkg/config"
)

// CORSMiddleware adds Cross-Origin Resource Sharing headers so browser
// clients can call the relay. Preflight OPTIONS requests are answered with
// 204 and never reach the handler. When cfg is disabled the middleware
// passes requests through untouched.
//
// Example usage:
//
//	handler = CORSMiddleware(&cfg.Server.CORS)(handler)
func CORSMiddleware(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg == nil || !cfg.Enabled {
			return next
		}

		methods := strings.Join(cfg.AllowedMethods, ", ")
		headers := strings.Join(cfg.AllowedHeaders, ", ")
		exposed := strings.Join(cfg.ExposedHeaders, ", ")
		wildcard := slices.Contains(cfg.AllowedOrigins, "*")

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if methods != "" {
					h.Set("Access-Control-Allow-Methods", methods)
				}
				if headers != "" {
					h.Set("Access-Control-Allow-Headers", headers)
				}
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
