package ftopsis

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// CriterionType is the polarity of a criterion.
type CriterionType int

const (
	// Benefit criteria prefer higher values (MAX).
	Benefit CriterionType = iota + 1
	// Cost criteria prefer lower values (MIN).
	Cost
)

func (c CriterionType) String() string {
	switch c {
	case Benefit:
		return "MAX"
	case Cost:
		return "MIN"
	default:
		return "UNKNOWN"
	}
}

// ParseCriterionType accepts MAX/MIN in any case, plus benefit/cost.
func ParseCriterionType(s string) (CriterionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MAX", "BENEFIT":
		return Benefit, nil
	case "MIN", "COST":
		return Cost, nil
	default:
		return 0, fmt.Errorf("%w: unknown criterion type %q", fuzzy.ErrMalformedInput, s)
	}
}

// Criteria maps criterion name to its polarity.
type Criteria map[string]CriterionType

func (c Criteria) validateFor(names []string) error {
	if len(c) != len(names) {
		return fmt.Errorf("%w: %d criterion types for %d criteria", fuzzy.ErrMalformedInput, len(c), len(names))
	}
	for _, name := range names {
		t, ok := c[name]
		if !ok {
			return fmt.Errorf("%w: no type for criterion %q", fuzzy.ErrMalformedInput, name)
		}
		if t != Benefit && t != Cost {
			return fmt.Errorf("%w: invalid type for criterion %q", fuzzy.ErrMalformedInput, name)
		}
	}
	return nil
}

// Weights maps criterion name to its fuzzy weight. One weight is shared by every row.
type Weights map[string]fuzzy.Number

func (w Weights) validateFor(names []string, kind fuzzy.Kind) error {
	if len(w) != len(names) {
		return fmt.Errorf("%w: %d weights for %d criteria", fuzzy.ErrMalformedInput, len(w), len(names))
	}
	for _, name := range names {
		n, ok := w[name]
		if !ok || n.IsZero() {
			return fmt.Errorf("%w: no weight for criterion %q", fuzzy.ErrMalformedInput, name)
		}
		if n.Kind() != kind {
			return fmt.Errorf("%w: weight of %q is %s, matrix is %s", fuzzy.ErrTypeMismatch, name, n.Kind(), kind)
		}
	}
	return nil
}
