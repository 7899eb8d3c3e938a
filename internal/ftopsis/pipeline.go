// Package ftopsis implements Fuzzy TOPSIS ranking and FTOPSIS-Class classification over
// triangular and trapezoidal fuzzy numbers.
//
// Both modes share the same stages: normalize the decision matrix per criterion, weigh it,
// resolve ideal references, measure distances and aggregate them into closeness
// coefficients. Ranking sorts elements by coefficient; classification assigns each element
// to the profile it is closest to.
package ftopsis

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// Pipeline runs one variant end to end. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	variant  Variant
	strategy NegativeStrategy
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithNegativeStrategy sets how classification builds negative references.
func WithNegativeStrategy(s NegativeStrategy) Option {
	return func(p *Pipeline) { p.strategy = s }
}

// NewPipeline creates a Pipeline for v.
func NewPipeline(v Variant, opts ...Option) *Pipeline {
	p := &Pipeline{
		variant:  v,
		strategy: NegativeAdjacent,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Variant returns the variant the pipeline was built for.
func (p *Pipeline) Variant() Variant { return p.variant }

// RankInput is the data for a ranking run.
type RankInput struct {
	Decision *Matrix
	Criteria Criteria
	Weights  Weights
}

// Score is one element's ranking outcome.
type Score struct {
	Element               string  `json:"element"`
	Rank                  int     `json:"rank"`
	Closeness             float64 `json:"closeness"`
	IdealDistance         float64 `json:"ideal_distance"`
	NegativeIdealDistance float64 `json:"negative_ideal_distance"`
}

// Ranking lists scores best first.
type Ranking struct {
	Kind   fuzzy.Kind `json:"kind"`
	Scores []Score    `json:"scores"`
}

// Order returns the element names best first.
func (r *Ranking) Order() []string {
	out := make([]string, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Element
	}
	return out
}

// Best returns the top-ranked element.
func (r *Ranking) Best() string {
	if len(r.Scores) == 0 {
		return ""
	}
	return r.Scores[0].Element
}

// Rank runs classic Fuzzy TOPSIS against the fixed ideals (1,…,1) and (0,…,0).
func (p *Pipeline) Rank(in RankInput) (*Ranking, error) {
	if in.Decision == nil {
		return nil, fmt.Errorf("rank: %w: no decision matrix", fuzzy.ErrMalformedInput)
	}
	weighted, err := p.prepare(in.Decision, in.Criteria, in.Weights, nil)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	ideal := RankingIdeals(p.variant.Kind(), len(weighted.criteria))
	dist, err := Distances(p.variant, weighted, []Ideal{ideal})
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	scores := make([]Score, weighted.Len())
	for i, row := range dist {
		cc, err := Closeness(row[0])
		if err != nil {
			return nil, fmt.Errorf("rank: element %q: %w", weighted.rows[i], err)
		}
		scores[i] = Score{
			Element:               weighted.rows[i],
			Closeness:             cc,
			IdealDistance:         row[0].Positive,
			NegativeIdealDistance: row[0].Negative,
		}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Closeness > scores[b].Closeness
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	p.logger.Debug("ranking complete", "kind", p.variant.Kind().String(), "elements", len(scores), "best", scores[0].Element)
	return &Ranking{Kind: p.variant.Kind(), Scores: scores}, nil
}

// ClassifyInput is the data for a classification run. Profiles rows are in ordinal order and
// Labels names them.
type ClassifyInput struct {
	Decision *Matrix
	Profiles *Matrix
	Labels   []string
	Criteria Criteria
	Weights  Weights
}

// ElementClass is one element's classification outcome. Closeness and Distances are aligned
// with Classification.Profiles.
type ElementClass struct {
	Element      string         `json:"element"`
	Closeness    []float64      `json:"closeness"`
	Distances    []DistancePair `json:"distances"`
	Profile      string         `json:"profile"`
	ProfileIndex int            `json:"profile_index"`
	Coefficient  float64        `json:"coefficient"`
}

// Classification holds the per-element assignment in input order.
type Classification struct {
	Kind     fuzzy.Kind     `json:"kind"`
	Profiles []string       `json:"profiles"`
	Elements []ElementClass `json:"elements"`
}

// Element looks an element up by name.
func (c *Classification) Element(name string) (ElementClass, bool) {
	for _, e := range c.Elements {
		if e.Element == name {
			return e, true
		}
	}
	return ElementClass{}, false
}

// Classify runs FTOPSIS-Class. Each element gets the profile with the largest closeness
// coefficient; on equal coefficients the lower ordinal profile wins.
func (p *Pipeline) Classify(in ClassifyInput) (*Classification, error) {
	if in.Decision == nil || in.Profiles == nil {
		return nil, fmt.Errorf("classify: %w: decision and profile matrices are required", fuzzy.ErrMalformedInput)
	}
	if !in.Decision.sameCriteria(in.Profiles) {
		return nil, fmt.Errorf("classify: %w: decision and profile matrices have different criteria", fuzzy.ErrMalformedInput)
	}
	if len(in.Labels) != in.Profiles.Len() {
		return nil, fmt.Errorf("classify: %w: %d labels for %d profiles", fuzzy.ErrMalformedInput, len(in.Labels), in.Profiles.Len())
	}

	ext, err := ComputeExtrema(in.Decision, in.Criteria)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	weighted, err := p.prepare(in.Decision, in.Criteria, in.Weights, &ext)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	weightedProfiles, err := p.prepare(in.Profiles, in.Criteria, in.Weights, &ext)
	if err != nil {
		return nil, fmt.Errorf("classify: profiles: %w", err)
	}

	ideals, err := ProfileIdeals(weightedProfiles, in.Labels, p.strategy)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	dist, err := Distances(p.variant, weighted, ideals)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	out := &Classification{
		Kind:     p.variant.Kind(),
		Profiles: append([]string(nil), in.Labels...),
		Elements: make([]ElementClass, weighted.Len()),
	}
	for i, row := range dist {
		ec := ElementClass{
			Element:      weighted.rows[i],
			Closeness:    make([]float64, len(row)),
			Distances:    row,
			ProfileIndex: -1,
		}
		for k, d := range row {
			cc, err := Closeness(d)
			if err != nil {
				return nil, fmt.Errorf("classify: element %q, profile %s: %w", ec.Element, in.Labels[k], err)
			}
			ec.Closeness[k] = cc
			if ec.ProfileIndex < 0 || cc > ec.Coefficient {
				ec.ProfileIndex = k
				ec.Coefficient = cc
			}
		}
		ec.Profile = in.Labels[ec.ProfileIndex]
		out.Elements[i] = ec
	}

	p.logger.Debug("classification complete",
		"kind", p.variant.Kind().String(),
		"elements", len(out.Elements),
		"profiles", len(out.Profiles),
		"negative_strategy", string(p.strategy),
	)
	return out, nil
}

// prepare normalizes and weighs m. When ext is nil the extrema come from m itself.
func (p *Pipeline) prepare(m *Matrix, criteria Criteria, weights Weights, ext *Extrema) (*Matrix, error) {
	if ext == nil {
		e, err := ComputeExtrema(m, criteria)
		if err != nil {
			return nil, err
		}
		ext = &e
	}
	normalized, err := p.variant.Normalize(m, criteria, *ext)
	if err != nil {
		return nil, err
	}
	weighted, err := p.variant.Weigh(normalized, weights)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("matrix weighted", "kind", p.variant.Kind().String(), "rows", m.Len(), "criteria", len(m.criteria))
	return weighted, nil
}
