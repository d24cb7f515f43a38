package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// StreamMetrics tracks SSE streams.
//
// Metrics:
//   - relay_stream_frames_total{mode}
//   - relay_stream_finish_total{mode,reason}
//   - relay_stream_disconnects_total{mode}
//   - relay_stream_duration_seconds{mode}
//   - relay_stream_first_frame_seconds{mode}
type StreamMetrics struct {
	frames      *prometheus.CounterVec
	finishes    *prometheus.CounterVec
	disconnects *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	firstFrame  *prometheus.HistogramVec
}

// NewStreamMetrics creates and registers stream metrics.
func NewStreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_frames_total",
				Help:      "SSE frames written to clients",
			},
			[]string{"mode"},
		),
		finishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_finish_total",
				Help:      "Completed streams by finish reason",
			},
			[]string{"mode", "reason"},
		),
		disconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_disconnects_total",
				Help:      "Streams abandoned before the terminal frame",
			},
			[]string{"mode"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_duration_seconds",
				Help:      "Duration of SSE streams in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"mode"},
		),
		firstFrame: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_first_frame_seconds",
				Help:      "Time from request start to the first SSE frame",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(sm.frames, sm.finishes, sm.disconnects, sm.duration, sm.firstFrame)
	return sm
}

// RecordFrame counts one frame.
func (sm *StreamMetrics) RecordFrame(mode string) {
	sm.frames.WithLabelValues(mode).Inc()
}

// RecordEnd records the end of a stream.
func (sm *StreamMetrics) RecordEnd(mode, finishReason string, disconnected bool, duration time.Duration) {
	if disconnected {
		sm.disconnects.WithLabelValues(mode).Inc()
	} else if finishReason != "" {
		sm.finishes.WithLabelValues(mode, finishReason).Inc()
	}
	sm.duration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordFirstFrame records time to first frame.
func (sm *StreamMetrics) RecordFirstFrame(mode string, latency time.Duration) {
	sm.firstFrame.WithLabelValues(mode).Observe(latency.Seconds())
}
