package ftopsis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

func tri(l, m, u float64) fuzzy.Number { return fuzzy.MustNew(l, m, u) }

func trap(a, b, c, d float64) fuzzy.Number { return fuzzy.MustNew(a, b, c, d) }

func mustMatrix(t *testing.T, rows, criteria []string, cells [][]fuzzy.Number) *Matrix {
	t.Helper()
	m, err := NewMatrix(rows, criteria, cells)
	require.NoError(t, err)
	return m
}

func ones(kind fuzzy.Kind, criteria ...string) Weights {
	w := make(Weights, len(criteria))
	for _, c := range criteria {
		w[c] = fuzzy.Constant(kind, 1)
	}
	return w
}
