package ftopsis

import (
	"fmt"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// NoRounding disables rounding of the weighted matrix.
const NoRounding = -1

// Variant is the per-representation part of the pipeline. Callers pick one Variant when the
// input is parsed and never inspect component counts again.
type Variant interface {
	Kind() fuzzy.Kind
	// Normalize scales each column of m with the given extrema.
	Normalize(m *Matrix, criteria Criteria, ext Extrema) (*Matrix, error)
	// Weigh multiplies every cell by its column weight.
	Weigh(m *Matrix, w Weights) (*Matrix, error)
	// Distance sums the per-criterion vertex distances between two rows.
	Distance(a, b []fuzzy.Number) (float64, error)
}

type variant struct {
	kind      fuzzy.Kind
	precision int
}

// Triangular returns the variant for (l, m, u) numbers. A precision of NoRounding or less
// leaves weighted values unrounded.
func Triangular(precision int) Variant {
	return &variant{kind: fuzzy.KindTriangular, precision: precision}
}

// Trapezoidal returns the variant for (a, b, c, d) numbers.
func Trapezoidal(precision int) Variant {
	return &variant{kind: fuzzy.KindTrapezoidal, precision: precision}
}

// VariantFor returns the variant for kind.
func VariantFor(kind fuzzy.Kind, precision int) (Variant, error) {
	switch kind {
	case fuzzy.KindTriangular:
		return Triangular(precision), nil
	case fuzzy.KindTrapezoidal:
		return Trapezoidal(precision), nil
	default:
		return nil, fmt.Errorf("%w: unsupported fuzzy kind %d", fuzzy.ErrMalformedInput, kind)
	}
}

func (v *variant) Kind() fuzzy.Kind { return v.kind }

func (v *variant) Normalize(m *Matrix, criteria Criteria, ext Extrema) (*Matrix, error) {
	if m.Kind() != v.kind {
		return nil, fmt.Errorf("normalize: %w: %s matrix in %s pipeline", fuzzy.ErrTypeMismatch, m.Kind(), v.kind)
	}
	if err := criteria.validateFor(m.criteria); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if err := ext.covers(m.criteria, criteria); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	return m.mapCells(func(_, j int, n fuzzy.Number) (fuzzy.Number, error) {
		e := ext.values[m.criteria[j]]
		if e.typ == Cost {
			return n.ScalarOver(e.value)
		}
		return n.DivideByScalar(e.value)
	})
}

func (v *variant) Weigh(m *Matrix, w Weights) (*Matrix, error) {
	if m.Kind() != v.kind {
		return nil, fmt.Errorf("weigh: %w: %s matrix in %s pipeline", fuzzy.ErrTypeMismatch, m.Kind(), v.kind)
	}
	if err := w.validateFor(m.criteria, v.kind); err != nil {
		return nil, fmt.Errorf("weigh: %w", err)
	}

	return m.mapCells(func(_, j int, n fuzzy.Number) (fuzzy.Number, error) {
		out, err := n.Multiply(w[m.criteria[j]])
		if err != nil {
			return fuzzy.Number{}, err
		}
		if v.precision > NoRounding {
			out = out.RoundTo(v.precision)
		}
		return out, nil
	})
}

func (v *variant) Distance(a, b []fuzzy.Number) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: distance between rows of %d and %d criteria", fuzzy.ErrMalformedInput, len(a), len(b))
	}
	var sum float64
	for j := range a {
		if a[j].Kind() != v.kind || b[j].Kind() != v.kind {
			return 0, fmt.Errorf("%w: distance in %s pipeline", fuzzy.ErrTypeMismatch, v.kind)
		}
		d, err := a[j].Distance(b[j])
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum, nil
}

type extremum struct {
	typ   CriterionType
	value float64
}

// Extrema holds the per-criterion normalization denominators: the largest upper component of
// a benefit column (c_max) or the smallest lower component of a cost column (c_min). The same
// Extrema must normalize the decision matrix and the profile matrix, otherwise their distances
// are not comparable.
type Extrema struct {
	values map[string]extremum
}

// ComputeExtrema scans m once per column. A zero extremum fails with fuzzy.ErrDivision.
func ComputeExtrema(m *Matrix, criteria Criteria) (Extrema, error) {
	if err := criteria.validateFor(m.criteria); err != nil {
		return Extrema{}, fmt.Errorf("extrema: %w", err)
	}

	ext := Extrema{values: make(map[string]extremum, len(m.criteria))}
	for j, name := range m.criteria {
		typ := criteria[name]
		value := m.cells[0][j].Upper()
		if typ == Cost {
			value = m.cells[0][j].Lower()
		}
		for i := 1; i < len(m.cells); i++ {
			n := m.cells[i][j]
			if typ == Cost {
				value = min(value, n.Lower())
			} else {
				value = max(value, n.Upper())
			}
		}
		if value == 0 {
			label := "c_max"
			if typ == Cost {
				label = "c_min"
			}
			return Extrema{}, fmt.Errorf("extrema: %w: %s of criterion %q is 0", fuzzy.ErrDivision, label, name)
		}
		ext.values[name] = extremum{typ: typ, value: value}
	}
	return ext, nil
}

// Value returns the denominator recorded for criterion.
func (e Extrema) Value(criterion string) (float64, bool) {
	x, ok := e.values[criterion]
	return x.value, ok
}

func (e Extrema) covers(names []string, criteria Criteria) error {
	if len(e.values) != len(names) {
		return fmt.Errorf("%w: extrema cover %d criteria, matrix has %d", fuzzy.ErrMalformedInput, len(e.values), len(names))
	}
	for _, name := range names {
		x, ok := e.values[name]
		if !ok {
			return fmt.Errorf("%w: no extremum for criterion %q", fuzzy.ErrMalformedInput, name)
		}
		if x.typ != criteria[name] {
			return fmt.Errorf("%w: extremum of %q computed as %s, criterion is %s", fuzzy.ErrMalformedInput, name, x.typ, criteria[name])
		}
	}
	return nil
}
