// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the agent loop and the completion client.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// RUN METRICS
// =============================================================================

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plancritic_runs_total",
			Help: "Total number of agent runs",
		},
		[]string{"outcome"}, // outcome: complete, max_iterations, error
	)

	runDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plancritic_run_duration_seconds",
			Help:    "Agent run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	runIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plancritic_run_iterations",
			Help:    "Critic iterations per agent run",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
		},
	)
)

// =============================================================================
// STAGE METRICS
// =============================================================================

var (
	stageExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plancritic_stage_executions_total",
			Help: "Total number of stage executions",
		},
		[]string{"stage", "status"}, // status: success, error
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plancritic_stage_duration_seconds",
			Help:    "Stage execution duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)

	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plancritic_verdicts_total",
			Help: "Critic verdicts by kind",
		},
		[]string{"verdict"},
	)
)

// =============================================================================
// COMPLETION METRICS
// =============================================================================

var (
	completionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plancritic_completion_calls_total",
			Help: "Total number of completion calls",
		},
		[]string{"provider", "model", "status"}, // status: success, error
	)

	completionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plancritic_completion_duration_seconds",
			Help:    "Completion call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	completionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plancritic_completion_tokens_total",
			Help: "Tokens consumed by completion calls",
		},
		[]string{"provider", "direction"}, // direction: input, output
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordRun records the outcome of one agent run.
func RecordRun(outcome string, iterations int, durationMS int) {
	runsTotal.WithLabelValues(outcome).Inc()
	runDurationSeconds.Observe(float64(durationMS) / 1000.0)
	runIterations.Observe(float64(iterations))
}

// RecordStageExecution records a single stage visit.
func RecordStageExecution(stage string, status string, durationMS int) {
	stageExecutionsTotal.WithLabelValues(stage, status).Inc()
	stageDurationSeconds.WithLabelValues(stage).Observe(float64(durationMS) / 1000.0)
}

// RecordVerdict counts a classified critic verdict.
func RecordVerdict(verdict string) {
	verdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordCompletionCall records completion call metrics.
func RecordCompletionCall(provider string, model string, status string, durationMS int) {
	completionCallsTotal.WithLabelValues(provider, model, status).Inc()
	completionDurationSeconds.WithLabelValues(provider, model).Observe(float64(durationMS) / 1000.0)
}

// RecordTokens adds reported token usage.
func RecordTokens(provider string, input, output int) {
	if input > 0 {
		completionTokensTotal.WithLabelValues(provider, "input").Add(float64(input))
	}
	if output > 0 {
		completionTokensTotal.WithLabelValues(provider, "output").Add(float64(output))
	}
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
