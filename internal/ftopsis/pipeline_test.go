package ftopsis

import (
	"io"
	"log/slog"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRankSingleBenefitCriterion(t *testing.T) {
	m := mustMatrix(t, []string{"A1", "A2"}, []string{"quality"}, [][]fuzzy.Number{
		{tri(1, 2, 3)},
		{tri(2, 3, 4)},
	})
	p := NewPipeline(Triangular(NoRounding), WithLogger(discardLogger()))

	r, err := p.Rank(RankInput{Decision: m, Criteria: Criteria{"quality": Benefit}, Weights: ones(fuzzy.KindTriangular, "quality")})
	require.NoError(t, err)

	assert.Equal(t, []string{"A2", "A1"}, r.Order())
	assert.Equal(t, "A2", r.Best())
	assert.Greater(t, r.Scores[0].Closeness, r.Scores[1].Closeness)
	assert.InDelta(t, 0.5, r.Scores[1].Closeness, 1e-12)
	assert.InDelta(t, 0.7066, r.Scores[0].Closeness, 1e-4)
	assert.InDelta(t, 0.3227, r.Scores[0].IdealDistance, 1e-4)
	assert.InDelta(t, 0.7773, r.Scores[0].NegativeIdealDistance, 1e-4)
	assert.Equal(t, 1, r.Scores[0].Rank)
	assert.Equal(t, 2, r.Scores[1].Rank)
}

func TestRankDominantAlternativeFirst(t *testing.T) {
	criteria := []string{"quality", "service", "price"}
	m := mustMatrix(t, []string{"S1", "S2", "S3"}, criteria, [][]fuzzy.Number{
		{tri(3, 5, 7), tri(1, 3, 5), tri(5, 7, 9)},
		{tri(7, 9, 9), tri(7, 9, 9), tri(1, 1, 3)},
		{tri(1, 3, 5), tri(3, 5, 7), tri(3, 5, 7)},
	})
	types := Criteria{"quality": Benefit, "service": Benefit, "price": Cost}
	weights := Weights{
		"quality": tri(0.5, 0.7, 0.9),
		"service": tri(0.3, 0.5, 0.7),
		"price":   tri(0.7, 0.9, 1),
	}

	r, err := NewPipeline(Triangular(NoRounding)).Rank(RankInput{Decision: m, Criteria: types, Weights: weights})
	require.NoError(t, err)
	assert.Equal(t, "S2", r.Best())
	for _, s := range r.Scores {
		assert.GreaterOrEqual(t, s.Closeness, 0.0)
		assert.LessOrEqual(t, s.Closeness, 1.0)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	m := mustMatrix(t, []string{"B", "A", "C"}, []string{"c1"}, [][]fuzzy.Number{
		{tri(1, 2, 3)},
		{tri(1, 2, 3)},
		{tri(2, 3, 4)},
	})
	r, err := NewPipeline(Triangular(NoRounding)).Rank(RankInput{Decision: m, Criteria: Criteria{"c1": Benefit}, Weights: ones(fuzzy.KindTriangular, "c1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, r.Order())
}

func TestRankTrapezoidal(t *testing.T) {
	m := mustMatrix(t, []string{"A1", "A2"}, []string{"c1", "c2"}, [][]fuzzy.Number{
		{trap(1, 2, 3, 4), trap(2, 3, 4, 5)},
		{trap(4, 5, 6, 7), trap(1, 1, 2, 2)},
	})
	r, err := NewPipeline(Trapezoidal(NoRounding)).Rank(RankInput{
		Decision: m,
		Criteria: Criteria{"c1": Benefit, "c2": Cost},
		Weights:  ones(fuzzy.KindTrapezoidal, "c1", "c2"),
	})
	require.NoError(t, err)
	assert.Equal(t, fuzzy.KindTrapezoidal, r.Kind)
	assert.Equal(t, "A2", r.Best())
}

func TestRankKindMismatch(t *testing.T) {
	m := mustMatrix(t, []string{"A1"}, []string{"c1"}, [][]fuzzy.Number{{trap(1, 2, 3, 4)}})
	_, err := NewPipeline(Triangular(NoRounding)).Rank(RankInput{Decision: m, Criteria: Criteria{"c1": Benefit}, Weights: ones(fuzzy.KindTrapezoidal, "c1")})
	assert.ErrorIs(t, err, fuzzy.ErrTypeMismatch)
}

func TestClosenessWithinUnitInterval(t *testing.T) {
	faker := gofakeit.New(42)
	criteria := []string{"c1", "c2", "c3", "c4"}
	types := Criteria{"c1": Benefit, "c2": Cost, "c3": Benefit, "c4": Cost}

	for run := 0; run < 25; run++ {
		rows := make([]string, faker.IntRange(2, 8))
		cells := make([][]fuzzy.Number, len(rows))
		for i := range rows {
			rows[i] = faker.UUID()
			cells[i] = make([]fuzzy.Number, len(criteria))
			for j := range criteria {
				l := faker.Float64Range(1, 5)
				m := l + faker.Float64Range(0, 2)
				u := m + faker.Float64Range(0, 2)
				cells[i][j] = tri(l, m, u)
			}
		}
		weights := make(Weights, len(criteria))
		for _, c := range criteria {
			l := faker.Float64Range(0.1, 0.5)
			weights[c] = tri(l, l+0.2, l+0.4)
		}

		r, err := NewPipeline(Triangular(4)).Rank(RankInput{
			Decision: mustMatrix(t, rows, criteria, cells),
			Criteria: types,
			Weights:  weights,
		})
		require.NoError(t, err)
		for _, s := range r.Scores {
			assert.GreaterOrEqual(t, s.Closeness, 0.0)
			assert.LessOrEqual(t, s.Closeness, 1.0)
		}
	}
}

func TestSelfReferenceIsDegenerate(t *testing.T) {
	m := mustMatrix(t, []string{"A1", "A2"}, []string{"c1", "c2"}, [][]fuzzy.Number{
		{tri(1, 2, 3), tri(2, 3, 4)},
		{tri(2, 3, 4), tri(1, 2, 3)},
	})
	types := Criteria{"c1": Benefit, "c2": Cost}
	v := Triangular(4)
	ext, err := ComputeExtrema(m, types)
	require.NoError(t, err)
	norm, err := v.Normalize(m, types, ext)
	require.NoError(t, err)
	weighted, err := v.Weigh(norm, ones(fuzzy.KindTriangular, "c1", "c2"))
	require.NoError(t, err)

	self := Ideal{Name: "self", Positive: weighted.Row(0), Negative: weighted.Row(0)}
	dist, err := Distances(v, weighted, []Ideal{self})
	require.NoError(t, err)
	assert.Zero(t, dist[0][0].Positive)
	assert.Zero(t, dist[0][0].Negative)

	_, err = Closeness(dist[0][0])
	assert.ErrorIs(t, err, fuzzy.ErrDivision)
}

func classificationFixture(t *testing.T) ClassifyInput {
	t.Helper()
	criteria := []string{"quality", "price"}
	decision := mustMatrix(t, []string{"F1", "F2", "F3"}, criteria, [][]fuzzy.Number{
		{trap(7, 8, 9, 10), trap(1, 2, 3, 4)},
		{trap(4, 5, 6, 7), trap(4, 5, 6, 7)},
		{trap(1, 2, 3, 4), trap(7, 8, 9, 10)},
	})
	profiles := mustMatrix(t, []string{"1", "2", "3"}, criteria, [][]fuzzy.Number{
		{trap(7, 8, 9, 10), trap(1, 2, 3, 4)},
		{trap(4, 5, 6, 7), trap(4, 5, 6, 7)},
		{trap(1, 2, 3, 4), trap(7, 8, 9, 10)},
	})
	return ClassifyInput{
		Decision: decision,
		Profiles: profiles,
		Labels:   []string{"Class A", "Class B", "Class C"},
		Criteria: Criteria{"quality": Benefit, "price": Cost},
		Weights: Weights{
			"quality": trap(0.5, 0.6, 0.8, 0.9),
			"price":   trap(0.3, 0.4, 0.5, 0.6),
		},
	}
}

func TestClassifyMatchingProfile(t *testing.T) {
	for _, strategy := range []NegativeStrategy{NegativeAdjacent, NegativeFarthest} {
		t.Run(string(strategy), func(t *testing.T) {
			in := classificationFixture(t)
			c, err := NewPipeline(Trapezoidal(NoRounding), WithNegativeStrategy(strategy)).Classify(in)
			require.NoError(t, err)

			assert.Equal(t, []string{"Class A", "Class B", "Class C"}, c.Profiles)
			for i, want := range c.Profiles {
				ec := c.Elements[i]
				assert.Equal(t, want, ec.Profile, "element %s", ec.Element)
				assert.Equal(t, i, ec.ProfileIndex)
				assert.Zero(t, ec.Distances[i].Positive)
				assert.InDelta(t, 1.0, ec.Coefficient, 1e-12)
				for _, cc := range ec.Closeness {
					assert.GreaterOrEqual(t, cc, 0.0)
					assert.LessOrEqual(t, cc, 1.0)
				}
			}
		})
	}
}

func TestClassifyTieGoesToLowerOrdinal(t *testing.T) {
	decision := mustMatrix(t, []string{"X"}, []string{"c1"}, [][]fuzzy.Number{{tri(4, 4, 4)}})
	profiles := mustMatrix(t, []string{"1", "2"}, []string{"c1"}, [][]fuzzy.Number{
		{tri(2, 2, 2)},
		{tri(6, 6, 6)},
	})
	c, err := NewPipeline(Triangular(NoRounding)).Classify(ClassifyInput{
		Decision: decision,
		Profiles: profiles,
		Labels:   []string{"low", "high"},
		Criteria: Criteria{"c1": Benefit},
		Weights:  ones(fuzzy.KindTriangular, "c1"),
	})
	require.NoError(t, err)

	x, ok := c.Element("X")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 0.5}, x.Closeness)
	assert.Equal(t, "low", x.Profile)
	assert.Equal(t, 0, x.ProfileIndex)
}

func TestClassifyUsesDecisionExtremaForProfiles(t *testing.T) {
	decision := mustMatrix(t, []string{"X"}, []string{"c1"}, [][]fuzzy.Number{{tri(1, 2, 4)}})
	profiles := mustMatrix(t, []string{"1", "2"}, []string{"c1"}, [][]fuzzy.Number{
		{tri(1, 2, 4)},
		{tri(4, 6, 8)},
	})
	c, err := NewPipeline(Triangular(NoRounding)).Classify(ClassifyInput{
		Decision: decision,
		Profiles: profiles,
		Labels:   []string{"one", "two"},
		Criteria: Criteria{"c1": Benefit},
		Weights:  ones(fuzzy.KindTriangular, "c1"),
	})
	require.NoError(t, err)

	x, _ := c.Element("X")
	assert.Equal(t, "one", x.Profile)
	assert.Zero(t, x.Distances[0].Positive)
	// profile 2 normalized by c_max=4 is (1, 1.5, 2), X is (0.25, 0.5, 1)
	assert.InDelta(t, (0.5625+1.0+1.0)/3, x.Distances[0].Negative*x.Distances[0].Negative, 1e-12)
}

func TestClassifyDegenerateProfiles(t *testing.T) {
	decision := mustMatrix(t, []string{"X"}, []string{"c1"}, [][]fuzzy.Number{{tri(1, 2, 3)}})
	profiles := mustMatrix(t, []string{"1", "2"}, []string{"c1"}, [][]fuzzy.Number{
		{tri(1, 2, 3)},
		{tri(1, 2, 3)},
	})
	_, err := NewPipeline(Triangular(4)).Classify(ClassifyInput{
		Decision: decision,
		Profiles: profiles,
		Labels:   []string{"a", "b"},
		Criteria: Criteria{"c1": Benefit},
		Weights:  ones(fuzzy.KindTriangular, "c1"),
	})
	assert.ErrorIs(t, err, fuzzy.ErrDivision)
}

func TestClassifyValidation(t *testing.T) {
	in := classificationFixture(t)

	t.Run("labels", func(t *testing.T) {
		bad := in
		bad.Labels = []string{"only one"}
		_, err := NewPipeline(Trapezoidal(NoRounding)).Classify(bad)
		assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)
	})

	t.Run("criteria", func(t *testing.T) {
		bad := in
		bad.Profiles = mustMatrix(t, []string{"1", "2"}, []string{"price", "quality"}, [][]fuzzy.Number{
			{trap(1, 2, 3, 4), trap(1, 2, 3, 4)},
			{trap(1, 2, 3, 4), trap(1, 2, 3, 4)},
		})
		bad.Labels = []string{"a", "b"}
		_, err := NewPipeline(Trapezoidal(NoRounding)).Classify(bad)
		assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)
	})

	t.Run("single profile", func(t *testing.T) {
		bad := in
		bad.Profiles = mustMatrix(t, []string{"1"}, []string{"quality", "price"}, [][]fuzzy.Number{
			{trap(1, 2, 3, 4), trap(1, 2, 3, 4)},
		})
		bad.Labels = []string{"a"}
		_, err := NewPipeline(Trapezoidal(NoRounding)).Classify(bad)
		assert.ErrorIs(t, err, fuzzy.ErrMalformedInput)
	})

	t.Run("variant", func(t *testing.T) {
		_, err := NewPipeline(Triangular(NoRounding)).Classify(in)
		assert.ErrorIs(t, err, fuzzy.ErrTypeMismatch)
	})
}
