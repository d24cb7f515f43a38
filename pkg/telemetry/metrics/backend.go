package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// BackendMetrics tracks the chunk source.
//
// Metrics:
//   - relay_backend_health (1=healthy, 0=unhealthy)
//   - relay_backend_latency_seconds{model}
//   - relay_backend_errors_total{error_type}
type BackendMetrics struct {
	health  prometheus.Gauge
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

// NewBackendMetrics creates and registers backend metrics.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		health: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_health",
				Help:      "Backend health status (1=healthy, 0=unhealthy)",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_latency_seconds",
				Help:      "Time until the backend stream opened",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"model"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_errors_total",
				Help:      "Backend errors by type",
			},
			[]string{"error_type"},
		),
	}

	registry.MustRegister(bm.health, bm.latency, bm.errors)
	return bm
}

// UpdateHealth sets the health gauge.
func (bm *BackendMetrics) UpdateHealth(healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	bm.health.Set(value)
}

// RecordLatency observes stream open latency.
func (bm *BackendMetrics) RecordLatency(model string, latency time.Duration) {
	bm.latency.WithLabelValues(model).Observe(latency.Seconds())
}

// RecordError counts one backend error.
func (bm *BackendMetrics) RecordError(errorType string) {
	bm.errors.WithLabelValues(errorType).Inc()
}
