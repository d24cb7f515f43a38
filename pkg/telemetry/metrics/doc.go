// Package metrics exposes the relay's Prometheus metrics.
//
// A Collector groups four metric families:
//
//   - requests: count, duration and token usage per model and output mode
//   - streams: frames written, finish reasons, client disconnects and time
//     to first frame
//   - translation: function calls, thinking budget corrections, tool family
//     and reasoning effort
//   - backend: health, stream open latency and errors
//
// Usage:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	collector.RecordRequest("gemini-2.5-pro", "openai", true, "success", elapsed)
package metrics
