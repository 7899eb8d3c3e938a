package ftopsis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

func TestRankingIdeals(t *testing.T) {
	ideal := RankingIdeals(fuzzy.KindTrapezoidal, 2)
	require.Len(t, ideal.Positive, 2)
	require.Len(t, ideal.Negative, 2)
	assert.Equal(t, []float64{1, 1, 1, 1}, ideal.Positive[1].Components())
	assert.Equal(t, []float64{0, 0, 0, 0}, ideal.Negative[0].Components())
}

func TestProfileIdeals(t *testing.T) {
	profiles := mustMatrix(t, []string{"1", "2", "3"}, []string{"c1"}, [][]fuzzy.Number{
		{tri(0, 0.25, 0.5)},
		{tri(0.5, 0.75, 1)},
		{tri(1, 1.25, 1.5)},
	})
	labels := []string{"low", "mid", "high"}

	t.Run("adjacent", func(t *testing.T) {
		ideals, err := ProfileIdeals(profiles, labels, NegativeAdjacent)
		require.NoError(t, err)
		require.Len(t, ideals, 3)
		assert.Equal(t, "low", ideals[0].Name)
		assert.Equal(t, profiles.At(0, 0), ideals[0].Positive[0])
		assert.Equal(t, profiles.At(1, 0), ideals[0].Negative[0])
		assert.Equal(t, profiles.At(2, 0), ideals[1].Negative[0])
		assert.Equal(t, profiles.At(1, 0), ideals[2].Negative[0])
	})

	t.Run("farthest", func(t *testing.T) {
		ideals, err := ProfileIdeals(profiles, labels, NegativeFarthest)
		require.NoError(t, err)
		assert.Equal(t, profiles.At(2, 0), ideals[0].Negative[0])
		assert.Equal(t, profiles.At(0, 0), ideals[1].Negative[0], "equidistant neighbours resolve to the lower ordinal")
		assert.Equal(t, profiles.At(0, 0), ideals[2].Negative[0])
	})
}

func TestParseNegativeStrategy(t *testing.T) {
	s, err := ParseNegativeStrategy("")
	require.NoError(t, err)
	assert.Equal(t, NegativeAdjacent, s)

	s, err = ParseNegativeStrategy("farthest")
	require.NoError(t, err)
	assert.Equal(t, NegativeFarthest, s)

	_, err = ParseNegativeStrategy("nearest")
	assert.Error(t, err)
}

func TestParseCriterionType(t *testing.T) {
	tests := map[string]CriterionType{"MAX": Benefit, "max": Benefit, "MIN": Cost, "min": Cost, "cost": Cost}
	for in, want := range tests {
		got, err := ParseCriterionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCriterionType("avg")
	assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)
	assert.Equal(t, "MIN", Cost.String())
}

func TestNewMatrixValidation(t *testing.T) {
	_, err := NewMatrix([]string{"A", "A"}, []string{"c1"}, [][]fuzzy.Number{{tri(1, 2, 3)}, {tri(1, 2, 3)}})
	assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)

	_, err = NewMatrix([]string{"A"}, []string{"c1", "c2"}, [][]fuzzy.Number{{tri(1, 2, 3)}})
	assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)

	_, err = NewMatrix([]string{"A"}, []string{"c1", "c2"}, [][]fuzzy.Number{{tri(1, 2, 3), trap(1, 2, 3, 4)}})
	assert.ErrorIs(t, err, fuzzy.ErrTypeMismatch)

	_, err = NewMatrix([]string{"A"}, []string{"c1"}, [][]fuzzy.Number{{{}}})
	assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)

	m, err := NewMatrix([]string{"A"}, []string{"c1"}, [][]fuzzy.Number{{tri(1, 2, 3)}})
	require.NoError(t, err)
	n, ok := m.Cell("A", "c1")
	assert.True(t, ok)
	assert.Equal(t, tri(1, 2, 3), n)
	_, ok = m.Cell("B", "c1")
	assert.False(t, ok)
}
