package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// Collector owns the relay's Prometheus metrics.
//
// Every Record method is a no-op when metrics are disabled, so callers do
// not need to check. Model names come from clients; once MaxModelLabels
// distinct values have been seen, further models are reported as "other".
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics     *RequestMetrics
	streamMetrics      *StreamMetrics
	translationMetrics *TranslationMetrics
	backendMetrics     *BackendMetrics

	configReloads *prometheus.CounterVec

	models *CardinalityLimiter
}

// NewCollector creates a collector registered on registry. If registry is
// nil a fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := *cfg
	if c.Namespace == "" {
		c.Namespace = config.DefaultMetricsNamespace
	}
	if len(c.RequestDurationBuckets) == 0 {
		c.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}
	if c.MaxModelLabels <= 0 {
		c.MaxModelLabels = config.DefaultMaxModelLabels
	}

	col := &Collector{
		config:             &c,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(&c, registry),
		streamMetrics:      NewStreamMetrics(&c, registry),
		translationMetrics: NewTranslationMetrics(&c, registry),
		backendMetrics:     NewBackendMetrics(&c, registry),
		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: c.Namespace,
				Subsystem: c.Subsystem,
				Name:      "config_reloads_total",
				Help:      "Configuration reload attempts by result",
			},
			[]string{"result"},
		),
		models: NewCardinalityLimiter(c.MaxModelLabels),
	}
	registry.MustRegister(col.configReloads)

	return col
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) model(model string) string {
	if model == "" {
		return "unknown"
	}
	if !c.models.Allow(model) {
		return "other"
	}
	return model
}

// RecordRequest records a finished chat completion request.
// status is "success", "client_error", "backend_error" or "cancelled".
func (c *Collector) RecordRequest(model, mode string, stream bool, status string, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.RecordRequest(c.model(model), mode, stream, status, duration)
}

// RecordTokens records reported token usage.
func (c *Collector) RecordTokens(model string, prompt, completion int) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.RecordTokens(c.model(model), prompt, completion)
}

// RecordFrame counts one SSE frame written in mode.
func (c *Collector) RecordFrame(mode string) {
	if !c.Enabled() {
		return
	}
	c.streamMetrics.RecordFrame(mode)
}

// RecordStreamEnd records how a stream ended. finishReason is empty when the
// stream ended without a terminal frame.
func (c *Collector) RecordStreamEnd(mode, finishReason string, disconnected bool, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.streamMetrics.RecordEnd(mode, finishReason, disconnected, duration)
}

// RecordFirstFrame records time to the first SSE frame.
func (c *Collector) RecordFirstFrame(mode string, latency time.Duration) {
	if !c.Enabled() {
		return
	}
	c.streamMetrics.RecordFirstFrame(mode, latency)
}

// RecordToolCalls counts function calls returned to clients.
func (c *Collector) RecordToolCalls(model string, n int) {
	if !c.Enabled() || n <= 0 {
		return
	}
	c.translationMetrics.RecordToolCalls(c.model(model), n)
}

// RecordBudgetCorrection counts a thinking budget correction.
func (c *Collector) RecordBudgetCorrection(model, reason string) {
	if !c.Enabled() {
		return
	}
	c.translationMetrics.RecordBudgetCorrection(c.model(model), reason)
}

// RecordToolFamily counts which tool family a request was sent with:
// "custom", "native" or "none".
func (c *Collector) RecordToolFamily(family string) {
	if !c.Enabled() {
		return
	}
	c.translationMetrics.RecordToolFamily(family)
}

// RecordEffort counts a resolved reasoning effort level; "" counts as "unset".
func (c *Collector) RecordEffort(level string) {
	if !c.Enabled() {
		return
	}
	c.translationMetrics.RecordEffort(level)
}

// RecordBackendError counts a backend failure by type.
func (c *Collector) RecordBackendError(errorType string) {
	if !c.Enabled() {
		return
	}
	c.backendMetrics.RecordError(errorType)
}

// RecordBackendLatency records time until the backend stream opened.
func (c *Collector) RecordBackendLatency(model string, latency time.Duration) {
	if !c.Enabled() {
		return
	}
	c.backendMetrics.RecordLatency(c.model(model), latency)
}

// UpdateBackendHealth sets the backend health gauge.
func (c *Collector) UpdateBackendHealth(healthy bool) {
	if !c.Enabled() {
		return
	}
	c.backendMetrics.UpdateHealth(healthy)
}

// RecordConfigReload counts a configuration reload attempt.
func (c *Collector) RecordConfigReload(ok bool) {
	if !c.Enabled() {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	c.configReloads.WithLabelValues(result).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct values admitted for a
// label.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already admitted or can still be.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
