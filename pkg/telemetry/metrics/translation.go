package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// TranslationMetrics tracks request translation decisions.
//
// Metrics:
//   - relay_tool_calls_total{model}
//   - relay_thinking_budget_corrections_total{model,reason}
//   - relay_tool_family_total{family}
//   - relay_reasoning_effort_total{level}
type TranslationMetrics struct {
	toolCalls   *prometheus.CounterVec
	corrections *prometheus.CounterVec
	toolFamily  *prometheus.CounterVec
	effort      *prometheus.CounterVec
}

// NewTranslationMetrics creates and registers translation metrics.
func NewTranslationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TranslationMetrics {
	tm := &TranslationMetrics{
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tool_calls_total",
				Help:      "Function calls returned to clients",
			},
			[]string{"model"},
		),
		corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "thinking_budget_corrections_total",
				Help:      "Thinking budgets corrected to the dynamic default",
			},
			[]string{"model", "reason"},
		),
		toolFamily: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tool_family_total",
				Help:      "Requests by tool family sent to the backend",
			},
			[]string{"family"},
		),
		effort: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reasoning_effort_total",
				Help:      "Requests by resolved reasoning effort",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(tm.toolCalls, tm.corrections, tm.toolFamily, tm.effort)
	return tm
}

// RecordToolCalls adds n function calls.
func (tm *TranslationMetrics) RecordToolCalls(model string, n int) {
	tm.toolCalls.WithLabelValues(model).Add(float64(n))
}

// RecordBudgetCorrection counts one correction.
func (tm *TranslationMetrics) RecordBudgetCorrection(model, reason string) {
	tm.corrections.WithLabelValues(model, reason).Inc()
}

// RecordToolFamily counts one request's tool family.
func (tm *TranslationMetrics) RecordToolFamily(family string) {
	tm.toolFamily.WithLabelValues(family).Inc()
}

// RecordEffort counts one resolved effort level.
func (tm *TranslationMetrics) RecordEffort(level string) {
	if level == "" {
		level = "unset"
	}
	tm.effort.WithLabelValues(level).Inc()
}
