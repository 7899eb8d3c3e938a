package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

func sampleRanking() *ftopsis.Ranking {
	return &ftopsis.Ranking{
		Kind: fuzzy.KindTriangular,
		Scores: []ftopsis.Score{
			{Element: "B", Rank: 1, Closeness: 0.70664, IdealDistance: 0.4082, NegativeIdealDistance: 0.98316},
			{Element: "A", Rank: 2, Closeness: 0.5, IdealDistance: 0.54006, NegativeIdealDistance: 0.54006},
		},
	}
}

func sampleClassification() *ftopsis.Classification {
	return &ftopsis.Classification{
		Kind:     fuzzy.KindTrapezoidal,
		Profiles: []string{"Good", "Bad"},
		Elements: []ftopsis.ElementClass{
			{Element: "X", Closeness: []float64{0.9123456, 0.1}, Profile: "Good", ProfileIndex: 0, Coefficient: 0.9123456},
			{Element: "Y", Closeness: []float64{0.25, 0.75}, Profile: "Bad", ProfileIndex: 1, Coefficient: 0.75},
		},
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.71, Round(0.70664, 2))
	assert.Equal(t, 0.12, Round(0.125, 2))
	assert.Equal(t, 0.14, Round(0.135, 2))
	assert.Equal(t, 1.0, Round(0.999999, 3))
	// 0.665 and 2.675 sit just above and below the midpoint in binary.
	assert.Equal(t, 0.67, Round(0.665, 2))
	assert.Equal(t, 2.67, Round(2.675, 2))
	assert.Equal(t, "0.67", fixed(0.665, 2))
	assert.Equal(t, "2.67", fixed(2.675, 2))
}

func TestRankingDocumentKeysFollowRanking(t *testing.T) {
	r := New(DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON, Result{Ranking: sampleRanking()}))
	out := buf.String()

	for _, field := range []string{`"proximities"`, `"distances"`} {
		start := strings.Index(out, field)
		require.GreaterOrEqual(t, start, 0, field)
		b := strings.Index(out[start:], `"B"`)
		a := strings.Index(out[start:], `"A"`)
		require.True(t, a >= 0 && b >= 0, field)
		assert.Less(t, b, a, "%s should list B before A", field)
	}

	var doc RankingDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"B", "A"}, doc.Results.Proximities.Keys())
	assert.Equal(t, []string{"B", "A"}, doc.Results.Distances.Keys())
	v, ok := doc.Results.Proximities.Get("A")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestOrderedSetKeepsFirstPosition(t *testing.T) {
	var o Ordered[int]
	o.Set("z", 1)
	o.Set("a", 2)
	o.Set("z", 3)

	assert.Equal(t, []string{"z", "a"}, o.Keys())
	assert.Equal(t, 2, o.Len())
	v, _ := o.Get("z")
	assert.Equal(t, 3, v)

	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"z":3,"a":2}`, string(raw))

	var empty Ordered[int]
	raw, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &o))
}

func TestRankingDocument(t *testing.T) {
	r := New(DefaultOptions())
	doc := r.RankingDocument(sampleRanking())

	assert.Equal(t, []string{"B", "A"}, doc.Results.Ranking)
	assert.Equal(t, "B", doc.Results.BestAlternative)
	prox, ok := doc.Results.Proximities.Get("B")
	require.True(t, ok)
	assert.Equal(t, 0.71, prox)
	dist, ok := doc.Results.Distances.Get("B")
	require.True(t, ok)
	assert.Equal(t, IdealDistances{Ideal: 0.41, NegativeIdeal: 0.98}, dist)
	assert.Equal(t, []string{"B", "A"}, doc.Results.Proximities.Keys())
	assert.Equal(t, []string{"B", "A"}, doc.Results.Distances.Keys())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON, Result{Ranking: sampleRanking()}))

	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded["results"], "best_alternative")
	assert.JSONEq(t, `{"ideal":0.54,"negative_ideal":0.54}`, string(mustField(t, decoded["results"]["distances"], "A")))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}

func TestClassificationDocument(t *testing.T) {
	r := New(DefaultOptions())
	doc := r.ClassificationDocument(sampleClassification())

	assert.Equal(t, map[string]float64{"Good": 0.91235, "Bad": 0.1}, doc.Closeness["X"])
	assert.Equal(t, Assignment{Profile: "Bad", Coefficient: 0.75}, doc.Classification["Y"])
}

func TestCombinedDocument(t *testing.T) {
	r := New(DefaultOptions())
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON, Result{
		Ranking:        sampleRanking(),
		Classification: sampleClassification(),
	}))

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "results")
	assert.Contains(t, decoded, "closeness")
	assert.Contains(t, decoded, "classification")
}

func TestTables(t *testing.T) {
	r := New(DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatTable, Result{Ranking: sampleRanking()}))
	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "0.71")
	assert.Contains(t, out, "Best alternative: B")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[1], "1"))

	buf.Reset()
	require.NoError(t, r.Write(&buf, FormatTable, Result{Classification: sampleClassification()}))
	out = buf.String()
	assert.Contains(t, out, "CLASSIFICATION")
	assert.Contains(t, out, "Good (0.91235)")
	assert.Contains(t, out, "Bad (0.75000)")
}

func TestWorkbook(t *testing.T) {
	r := New(DefaultOptions())
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatXLSX, Result{
		Ranking:        sampleRanking(),
		Classification: sampleClassification(),
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{rankingSheet, classificationSheet}, f.GetSheetList())

	v, err := f.GetCellValue(rankingSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "B", v)

	v, err = f.GetCellValue(classificationSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Good", v)

	v, err = f.GetCellValue(classificationSheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Bad", v)
}

func TestWriteEmptyResult(t *testing.T) {
	err := New(DefaultOptions()).Write(&bytes.Buffer{}, FormatJSON, Result{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
