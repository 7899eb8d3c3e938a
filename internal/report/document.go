package report

import "github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"

type RankingDocument struct {
	Results RankingResults `json:"results"`
}

type RankingResults struct {
	Ranking         []string `json:"ranking"`
	BestAlternative string   `json:"best_alternative"`
	// Proximities and Distances list alternatives best first.
	Proximities Ordered[float64]        `json:"proximities"`
	Distances   Ordered[IdealDistances] `json:"distances"`
}

type IdealDistances struct {
	Ideal         float64 `json:"ideal"`
	NegativeIdeal float64 `json:"negative_ideal"`
}

// ClassificationDocument maps every element to its closeness per profile label and to the
// profile it was assigned.
type ClassificationDocument struct {
	Closeness      map[string]map[string]float64 `json:"closeness"`
	Classification map[string]Assignment         `json:"classification"`
}

type Assignment struct {
	Profile     string  `json:"profile"`
	Coefficient float64 `json:"coefficient"`
}

func (r *Renderer) RankingDocument(rk *ftopsis.Ranking) RankingDocument {
	p := r.opts.RankingDecimals
	res := RankingResults{
		Ranking:         rk.Order(),
		BestAlternative: rk.Best(),
	}
	for _, s := range rk.Scores {
		res.Proximities.Set(s.Element, Round(s.Closeness, p))
		res.Distances.Set(s.Element, IdealDistances{
			Ideal:         Round(s.IdealDistance, p),
			NegativeIdeal: Round(s.NegativeIdealDistance, p),
		})
	}
	return RankingDocument{Results: res}
}

func (r *Renderer) ClassificationDocument(c *ftopsis.Classification) ClassificationDocument {
	p := r.opts.ClassificationDecimals
	doc := ClassificationDocument{
		Closeness:      make(map[string]map[string]float64, len(c.Elements)),
		Classification: make(map[string]Assignment, len(c.Elements)),
	}
	for _, e := range c.Elements {
		byLabel := make(map[string]float64, len(c.Profiles))
		for k, label := range c.Profiles {
			byLabel[label] = Round(e.Closeness[k], p)
		}
		doc.Closeness[e.Element] = byLabel
		doc.Classification[e.Element] = Assignment{Profile: e.Profile, Coefficient: Round(e.Coefficient, p)}
	}
	return doc
}
