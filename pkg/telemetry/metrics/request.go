package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// RequestMetrics tracks chat completion requests.
//
// Metrics:
//   - relay_requests_total{model,mode,stream,status}
//   - relay_request_duration_seconds{model,mode,stream}
//   - relay_tokens_total{model,type}
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of chat completion requests",
			},
			[]string{"model", "mode", "stream", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat completion requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"model", "mode", "stream"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Tokens reported by the backend",
			},
			[]string{"model", "type"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration, rm.tokensTotal)
	return rm
}

// RecordRequest records one finished request.
func (rm *RequestMetrics) RecordRequest(model, mode string, stream bool, status string, duration time.Duration) {
	s := strconv.FormatBool(stream)
	rm.requestsTotal.WithLabelValues(model, mode, s, status).Inc()
	rm.requestDuration.WithLabelValues(model, mode, s).Observe(duration.Seconds())
}

// RecordTokens records prompt and completion tokens.
func (rm *RequestMetrics) RecordTokens(model string, prompt, completion int) {
	if prompt > 0 {
		rm.tokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		rm.tokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}
