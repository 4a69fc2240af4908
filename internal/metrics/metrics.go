// Package metrics counts screening runs. A CLI process is short lived, so the
// registry is written to a node_exporter textfile instead of being scraped.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cv_screener"

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	candidates  *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	finalScore  prometheus.Histogram
	activeRuns  prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of screening runs",
			},
			[]string{"backend", "status"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of screening runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"backend"},
		),
		candidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_scored_total",
				Help:      "Total number of scored candidates by verdict",
			},
			[]string{"verdict"},
		),
		skipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_skipped_total",
				Help:      "Total number of candidates skipped before scoring",
			},
			[]string{"reason"},
		),
		finalScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "final_score",
				Help:      "Distribution of candidate fit scores",
				Buckets:   []float64{50, 65, 75, 85, 100},
			},
		),
		activeRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_active",
				Help:      "Number of screening runs in progress",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RunStarted returns a func to call when the run is over.
func (m *Metrics) RunStarted(backend string) func(err error) {
	if m == nil {
		return func(error) {}
	}

	started := time.Now()
	m.activeRuns.Inc()

	return func(err error) {
		m.activeRuns.Dec()
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.runs.WithLabelValues(backend, status).Inc()
		m.runDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
	}
}

func (m *Metrics) CandidateScored(verdict string, score float64) {
	if m == nil {
		return
	}
	m.candidates.WithLabelValues(verdict).Inc()
	m.finalScore.Observe(score)
}

func (m *Metrics) CandidateSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return errors.New("metrics are disabled")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
