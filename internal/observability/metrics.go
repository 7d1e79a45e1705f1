package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Weather lookup outcomes.
const (
	WeatherOutcomeSuccess = "success"
	WeatherOutcomeError   = "error"
	WeatherOutcomeFuture  = "future"
	WeatherOutcomeEmpty   = "empty"
	WeatherOutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus collectors for section generation.
type Metrics struct {
	SectionsGenerated  *prometheus.CounterVec   // labels: section, outcome={success,error}
	GenerationDuration *prometheus.HistogramVec // labels: section
	PromptTokens       prometheus.Histogram
	WeatherLookups     *prometheus.CounterVec // labels: outcome
	WorkflowActions    *prometheus.CounterVec // labels: action={start,regenerate,accept}, outcome={success,error}
	ActiveSessions     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SectionsGenerated,
		m.GenerationDuration,
		m.PromptTokens,
		m.WeatherLookups,
		m.WorkflowActions,
		m.ActiveSessions,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SectionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lossreport",
			Name:      "sections_generated_total",
			Help:      "Section generation attempts by section and outcome.",
		}, []string{"section", "outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lossreport",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end duration of one section generation (weather, prompt, provider).",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"section"}),
		PromptTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lossreport",
			Name:      "prompt_tokens_estimated",
			Help:      "Estimated token size of assembled instructions.",
			Buckets:   []float64{250, 500, 1000, 1500, 2000, 3000, 4000, 6000, 8000},
		}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lossreport",
			Name:      "weather_lookups_total",
			Help:      "Weather enrichment outcomes.",
		}, []string{"outcome"}),
		WorkflowActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lossreport",
			Name:      "workflow_actions_total",
			Help:      "Operator workflow transitions by action and outcome.",
		}, []string{"action", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lossreport",
			Name:      "active_sessions",
			Help:      "Review sessions currently held in memory.",
		}),
	}
}
