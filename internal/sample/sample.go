// Package sample generates synthetic evaluation documents in the layouts accepted by the input
// package. The generated scales keep every component at or above 1, so cost criteria never
// divide by zero.
package sample

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
)

type Options struct {
	Kind     fuzzy.Kind
	Mode     input.Mode
	Elements int
	Criteria int
	// Profiles beyond the five-term scale repeat reference rows.
	Profiles int
	// Seed makes output reproducible. Zero picks a random seed.
	Seed int64
}

func DefaultOptions() Options {
	return Options{
		Kind:     fuzzy.KindTriangular,
		Mode:     input.ModeClassify,
		Elements: 5,
		Criteria: 4,
		Profiles: 3,
	}
}

func (o Options) validate() error {
	switch {
	case !o.Kind.Valid():
		return fmt.Errorf("unsupported kind %s", o.Kind)
	case o.Mode != input.ModeRank && o.Mode != input.ModeClassify:
		return fmt.Errorf("mode must be %q or %q", input.ModeRank, input.ModeClassify)
	case o.Elements < 1:
		return fmt.Errorf("need at least one element")
	case o.Criteria < 1:
		return fmt.Errorf("need at least one criterion")
	case o.Mode == input.ModeClassify && o.Profiles < 1:
		return fmt.Errorf("need at least one profile")
	}
	return nil
}

var (
	termNames   = []string{"Very Low", "Low", "Medium", "High", "Very High"}
	weightNames = []string{"Very Unimportant", "Unimportant", "Moderate", "Important", "Very Important"}

	triangularTerms   = [][]float64{{1, 1, 3}, {1, 3, 5}, {3, 5, 7}, {5, 7, 9}, {7, 9, 10}}
	trapezoidalTerms  = [][]float64{{1, 1, 2, 3}, {2, 3, 4, 5}, {4, 5, 6, 7}, {6, 7, 8, 9}, {8, 9, 10, 10}}
	triangularWeights = [][]float64{
		{0.1, 0.1, 0.3}, {0.1, 0.3, 0.5}, {0.3, 0.5, 0.7}, {0.5, 0.7, 0.9}, {0.7, 0.9, 1},
	}
)

type generator struct {
	opts  Options
	faker *gofakeit.Faker
}

// Generate returns an indented JSON document.
func Generate(opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	g := &generator{opts: opts, faker: gofakeit.New(opts.Seed)}

	var doc map[string]any
	switch {
	case opts.Mode == input.ModeRank:
		doc = g.ranking()
	case opts.Kind == fuzzy.KindTrapezoidal:
		doc = g.trapezoidal()
	default:
		doc = g.triangular()
	}
	return json.MarshalIndent(doc, "", "  ")
}

// names returns n distinct company names.
func (g *generator) names(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := g.faker.Company()
		if seen[name] {
			name = name + " " + strconv.Itoa(len(out)+1)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func (g *generator) criteria() ([]string, []bool) {
	names := make([]string, g.opts.Criteria)
	cost := make([]bool, g.opts.Criteria)
	for j := range names {
		names[j] = fmt.Sprintf("C%d", j+1)
		cost[j] = g.faker.Number(0, 3) == 0
	}
	return names, cost
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// number draws a non-decreasing fuzzy number with every component in [1, 10].
func (g *generator) number() []float64 {
	size := g.opts.Kind.Size()
	out := make([]float64, size)
	out[0] = round2(g.faker.Float64Range(1, 6))
	for i := 1; i < size; i++ {
		out[i] = round2(math.Min(10, out[i-1]+g.faker.Float64Range(0, 1.5)))
	}
	return out
}

// weight draws a non-decreasing fuzzy weight in (0, 1].
func (g *generator) weight() []float64 {
	size := g.opts.Kind.Size()
	out := make([]float64, size)
	out[0] = round2(g.faker.Float64Range(0.1, 0.6))
	for i := 1; i < size; i++ {
		out[i] = round2(math.Min(1, out[i-1]+g.faker.Float64Range(0, 0.2)))
	}
	return out
}

func (g *generator) ranking() map[string]any {
	alternatives := g.names(g.opts.Elements)
	criteria, cost := g.criteria()

	matrix := make(map[string][][]float64, len(alternatives))
	for _, a := range alternatives {
		row := make([][]float64, len(criteria))
		for j := range criteria {
			row[j] = g.number()
		}
		matrix[a] = row
	}
	types := make(map[string]string, len(criteria))
	weights := make(map[string][]float64, len(criteria))
	for j, c := range criteria {
		types[c] = "max"
		if cost[j] {
			types[c] = "min"
		}
		weights[c] = g.weight()
	}

	return map[string]any{
		"parameters": map[string]any{
			"alternatives":       alternatives,
			"criteria":           criteria,
			"performance_matrix": matrix,
			"criteria_types":     types,
			"weights":            weights,
		},
	}
}

func (g *generator) term() int { return g.faker.Number(0, len(termNames)-1) }

// profileTerm is the term index of profile k (0 is best) on a criterion.
func (g *generator) profileTerm(k int, cost bool) int {
	top := len(termNames) - 1
	idx := top / 2
	if p := g.opts.Profiles; p > 1 {
		idx = int(math.Round(float64((p-1-k)*top) / float64(p-1)))
	}
	if cost {
		idx = top - idx
	}
	return idx
}

func (g *generator) profiles() ([]string, map[string]string) {
	labels := make([]string, g.opts.Profiles)
	mapping := make(map[string]string, g.opts.Profiles)
	for k := range labels {
		labels[k] = "Class " + profileLetter(k)
		mapping[strconv.Itoa(k+1)] = labels[k]
	}
	return labels, mapping
}

func profileLetter(k int) string {
	if k < 26 {
		return string(rune('A' + k))
	}
	return strconv.Itoa(k + 1)
}

func typeName(cost bool) string {
	if cost {
		return "cost"
	}
	return "benefit"
}

func table(names []string, values [][]float64) map[string][]float64 {
	out := make(map[string][]float64, len(names))
	for i, n := range names {
		out[n] = values[i]
	}
	return out
}

func (g *generator) trapezoidal() map[string]any {
	elements := g.names(g.opts.Elements)
	criteria, cost := g.criteria()
	labels, mapping := g.profiles()

	decision := make(map[string][]string, len(elements))
	for _, e := range elements {
		row := make([]string, len(criteria))
		for j := range criteria {
			row[j] = termNames[g.term()]
		}
		decision[e] = row
	}
	reference := make(map[string][]string, len(labels))
	for k, label := range labels {
		row := make([]string, len(criteria))
		for j := range criteria {
			row[j] = termNames[g.profileTerm(k, cost[j])]
		}
		reference[label] = row
	}
	types := make(map[string]string, len(criteria))
	weights := make(map[string]string, len(criteria))
	for j, c := range criteria {
		types[c] = typeName(cost[j])
		weights[c] = termNames[g.term()]
	}

	return map[string]any{
		"linguistic_terms":      table(termNames, trapezoidalTerms),
		"weights":               weights,
		"criteria_type":         types,
		"elements":              elements,
		"criteria":              criteria,
		"fuzzy_decision_matrix": decision,
		"reference_matrix":      reference,
		"profile_mapping":       mapping,
	}
}

func (g *generator) triangular() map[string]any {
	suppliers := g.names(g.opts.Elements)
	criteria, cost := g.criteria()
	labels, mapping := g.profiles()

	decision := make(map[string][]string, len(criteria))
	profiles := make(map[string][]string, len(criteria))
	types := make(map[string]string, len(criteria))
	weights := make(map[string][]string, len(criteria))
	for j, c := range criteria {
		col := make([]string, len(suppliers))
		for i := range suppliers {
			col[i] = termNames[g.term()]
		}
		decision[c] = col

		pcol := make([]string, len(labels))
		for k := range labels {
			pcol[k] = termNames[g.profileTerm(k, cost[j])]
		}
		profiles[c] = pcol

		types[c] = typeName(cost[j])
		weights[c] = []string{weightNames[g.faker.Number(0, len(weightNames)-1)]}
	}

	return map[string]any{
		"linguistic_variables_alternatives": table(termNames, triangularTerms),
		"linguistic_variables_weights":      table(weightNames, triangularWeights),
		"decision_matrix":                   decision,
		"profile_matrix":                    profiles,
		"weights":                           weights,
		"criteria_type":                     types,
		"suppliers":                         suppliers,
		"profile_mapping":                   mapping,
	}
}
