package ftopsis

import (
	"fmt"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// DistancePair holds an element's distance to the positive (d⁺) and negative (d⁻) reference.
type DistancePair struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// Distances computes, for every row of m and every ideal, the pair (d⁺, d⁻). The result is
// indexed [row][ideal].
func Distances(v Variant, m *Matrix, ideals []Ideal) ([][]DistancePair, error) {
	out := make([][]DistancePair, m.Len())
	for i := range out {
		row := m.cells[i]
		out[i] = make([]DistancePair, len(ideals))
		for k, ideal := range ideals {
			pos, err := v.Distance(row, ideal.Positive)
			if err != nil {
				return nil, fmt.Errorf("distance %q to %s: %w", m.rows[i], ideal.Name, err)
			}
			neg, err := v.Distance(row, ideal.Negative)
			if err != nil {
				return nil, fmt.Errorf("distance %q to negative %s: %w", m.rows[i], ideal.Name, err)
			}
			out[i][k] = DistancePair{Positive: pos, Negative: neg}
		}
	}
	return out, nil
}

// Closeness returns d⁻ / (d⁻ + d⁺). An element that coincides with both references has no
// defined coefficient and fails with fuzzy.ErrDivision.
func Closeness(d DistancePair) (float64, error) {
	total := d.Negative + d.Positive
	if total == 0 {
		return 0, fmt.Errorf("%w: closeness with d+ = d- = 0", fuzzy.ErrDivision)
	}
	cc := d.Negative / total
	return min(max(cc, 0), 1), nil
}
