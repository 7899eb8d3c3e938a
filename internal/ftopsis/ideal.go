package ftopsis

import (
	"fmt"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// Ideal is a pair of reference rows an element is measured against.
type Ideal struct {
	Name     string
	Positive []fuzzy.Number
	Negative []fuzzy.Number
}

// RankingIdeals returns the fixed FPIS (all ones) and FNIS (all zeros) used in ranking mode.
// Weighted normalized values are bounded by [0,1], so the ideals do not depend on the matrix.
func RankingIdeals(kind fuzzy.Kind, criteria int) Ideal {
	ideal := Ideal{
		Name:     "ideal",
		Positive: make([]fuzzy.Number, criteria),
		Negative: make([]fuzzy.Number, criteria),
	}
	for j := 0; j < criteria; j++ {
		ideal.Positive[j] = fuzzy.Constant(kind, 1)
		ideal.Negative[j] = fuzzy.Constant(kind, 0)
	}
	return ideal
}

// NegativeStrategy selects how a profile's negative reference is built.
type NegativeStrategy string

const (
	// NegativeAdjacent uses the next profile row in ordinal order, or the previous one for
	// the last profile.
	NegativeAdjacent NegativeStrategy = "adjacent"
	// NegativeFarthest picks, per criterion, the other profile's cell farthest from the
	// profile's own cell.
	NegativeFarthest NegativeStrategy = "farthest"
)

// ParseNegativeStrategy maps a configuration value to a strategy. Empty means adjacent.
func ParseNegativeStrategy(s string) (NegativeStrategy, error) {
	switch NegativeStrategy(s) {
	case "", NegativeAdjacent:
		return NegativeAdjacent, nil
	case NegativeFarthest:
		return NegativeFarthest, nil
	default:
		return "", fmt.Errorf("unknown negative ideal strategy %q", s)
	}
}

// ProfileIdeals builds one ideal pair per row of the weighted, normalized profile matrix.
// labels name the rows in ordinal order.
func ProfileIdeals(profiles *Matrix, labels []string, strategy NegativeStrategy) ([]Ideal, error) {
	if profiles.Len() < 2 {
		return nil, fmt.Errorf("%w: classification needs at least 2 profiles, got %d", fuzzy.ErrMalformedInput, profiles.Len())
	}
	if len(labels) != profiles.Len() {
		return nil, fmt.Errorf("%w: %d profile labels for %d profiles", fuzzy.ErrMalformedInput, len(labels), profiles.Len())
	}

	ideals := make([]Ideal, profiles.Len())
	for k := range ideals {
		ideals[k] = Ideal{Name: labels[k], Positive: profiles.Row(k)}
		switch strategy {
		case NegativeFarthest:
			neg, err := farthestRow(profiles, k)
			if err != nil {
				return nil, err
			}
			ideals[k].Negative = neg
		default:
			next := k + 1
			if next == profiles.Len() {
				next = k - 1
			}
			ideals[k].Negative = profiles.Row(next)
		}
	}
	return ideals, nil
}

func farthestRow(profiles *Matrix, k int) ([]fuzzy.Number, error) {
	out := make([]fuzzy.Number, len(profiles.criteria))
	for j := range profiles.criteria {
		best := -1.0
		for i := 0; i < profiles.Len(); i++ {
			if i == k {
				continue
			}
			d, err := profiles.At(k, j).Distance(profiles.At(i, j))
			if err != nil {
				return nil, err
			}
			// strict comparison keeps the lowest ordinal on ties
			if d > best {
				best = d
				out[j] = profiles.At(i, j)
			}
		}
	}
	return out, nil
}
