// Package metrics holds the Prometheus collectors for evaluation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	elements *prometheus.CounterVec
	queued   prometheus.Gauge
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftopsis",
			Name:      "runs_total",
			Help:      "Evaluations by mode, fuzzy kind and outcome.",
		}, []string{"mode", "kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ftopsis",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating a problem.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"mode", "kind"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftopsis",
			Name:      "elements_evaluated_total",
			Help:      "Alternatives ranked or elements classified.",
		}, []string{"mode"}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftopsis",
			Name:      "runs_pending",
			Help:      "Queued runs seen by the last broker tick.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.elements, m.queued)
	}
	return m
}

// ObserveRun records one evaluation. A nil receiver is a no-op.
func (m *Metrics) ObserveRun(mode, kind string, elements int, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(mode, kind, outcome).Inc()
	if err != nil {
		return
	}
	m.duration.WithLabelValues(mode, kind).Observe(took.Seconds())
	m.elements.WithLabelValues(mode).Add(float64(elements))
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.queued.Set(float64(n))
}
