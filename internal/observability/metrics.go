package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for summary runs.
type Metrics struct {
	Runs           *prometheus.CounterVec   // labels: outcome={delivered,logged_fallback,aborted}
	ProviderErrors *prometheus.CounterVec   // labels: provider={weather,news}
	StageDuration  *prometheus.HistogramVec // labels: stage={weather,news,deliver}
	LastSuccess    prometheus.Gauge
	RunInProgress  prometheus.Gauge
}

var stageBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morning_summary",
			Name:      "runs_total",
			Help:      "Summary runs by final outcome.",
		}, []string{"outcome"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morning_summary",
			Name:      "provider_errors_total",
			Help:      "Upstream provider failures by provider.",
		}, []string{"provider"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "morning_summary",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each run stage in seconds.",
			Buckets:   stageBuckets,
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "morning_summary",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run, emailed or logged as fallback.",
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "morning_summary",
			Name:      "run_in_progress",
			Help:      "1 while a run is executing, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Runs,
		m.ProviderErrors,
		m.StageDuration,
		m.LastSuccess,
		m.RunInProgress,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Runs:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "morning_summary", Name: "runs_total"}, []string{"outcome"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "morning_summary", Name: "provider_errors_total"}, []string{"provider"}),
		StageDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "morning_summary", Name: "stage_duration_seconds"}, []string{"stage"}),
		LastSuccess:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "morning_summary", Name: "last_success_timestamp_seconds"}),
		RunInProgress:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "morning_summary", Name: "run_in_progress"}),
	}
}
