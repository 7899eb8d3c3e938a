package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metric:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("rank", "triangular", 3, 2*time.Millisecond, nil)
	m.ObserveRun("rank", "triangular", 5, time.Millisecond, nil)
	m.ObserveRun("classify", "trapezoidal", 4, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, counterValue(t, reg, "ftopsis_runs_total",
		map[string]string{"mode": "rank", "kind": "triangular", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "ftopsis_runs_total",
		map[string]string{"mode": "classify", "kind": "trapezoidal", "outcome": "error"}))
	assert.Equal(t, 8.0, counterValue(t, reg, "ftopsis_elements_evaluated_total",
		map[string]string{"mode": "rank"}))
	assert.Equal(t, 0.0, counterValue(t, reg, "ftopsis_elements_evaluated_total",
		map[string]string{"mode": "classify"}))
}

func TestSetPending(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SetPending(7)
	assert.Equal(t, 7.0, counterValue(t, reg, "ftopsis_runs_pending", nil))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("rank", "triangular", 1, time.Millisecond, nil)
		m.SetPending(1)
	})
}
