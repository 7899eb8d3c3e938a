// Package fuzzy implements triangular and trapezoidal fuzzy numbers and the arithmetic the
// TOPSIS pipeline needs on them.
package fuzzy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// Kind identifies the representation of a fuzzy number. Its value is the number of
// components.
type Kind uint8

const (
	KindTriangular  Kind = 3
	KindTrapezoidal Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindTriangular:
		return "triangular"
	case KindTrapezoidal:
		return "trapezoidal"
	default:
		return "unknown"
	}
}

// Size returns the number of components of the kind.
func (k Kind) Size() int { return int(k) }

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool { return k == KindTriangular || k == KindTrapezoidal }

// KindForSize maps a parameter count to a kind.
func KindForSize(n int) (Kind, error) {
	switch n {
	case 3:
		return KindTriangular, nil
	case 4:
		return KindTrapezoidal, nil
	default:
		return 0, fmt.Errorf("%w: fuzzy number needs 3 or 4 parameters, got %d", ErrMalformedInput, n)
	}
}

// Number is an immutable triangular (l, m, u) or trapezoidal (a, b, c, d) fuzzy number.
// The zero value is not a valid number; use New.
type Number struct {
	kind Kind
	v    [4]float64
}

// New builds a fuzzy number from an ordered parameter list. Three values give a triangular
// number, four a trapezoidal one.
func New(values ...float64) (Number, error) {
	kind, err := KindForSize(len(values))
	if err != nil {
		return Number{}, err
	}
	n := Number{kind: kind}
	copy(n.v[:], values)
	if err := n.check(); err != nil {
		return Number{}, err
	}
	return n, nil
}

// NewTriangular builds (l, m, u).
func NewTriangular(l, m, u float64) (Number, error) { return New(l, m, u) }

// NewTrapezoidal builds (a, b, c, d).
func NewTrapezoidal(a, b, c, d float64) (Number, error) { return New(a, b, c, d) }

// MustNew is New for literals known to be valid. It panics on error.
func MustNew(values ...float64) Number {
	n, err := New(values...)
	if err != nil {
		panic(err)
	}
	return n
}

// Constant returns the crisp number whose components all equal c.
func Constant(kind Kind, c float64) Number {
	n := Number{kind: kind}
	for i := 0; i < kind.Size(); i++ {
		n.v[i] = c
	}
	return n
}

func (n Number) Kind() Kind { return n.kind }

// IsZero reports whether n is the zero value rather than a constructed number.
func (n Number) IsZero() bool { return n.kind == 0 }

// Components returns a copy of the components in order.
func (n Number) Components() []float64 {
	out := make([]float64, n.kind.Size())
	copy(out, n.v[:n.kind.Size()])
	return out
}

// Lower is the smallest component (l or a).
func (n Number) Lower() float64 { return n.v[0] }

// Upper is the largest component (u or d).
func (n Number) Upper() float64 { return n.v[n.kind.Size()-1] }

// DivideByScalar divides every component by s.
func (n Number) DivideByScalar(s float64) (Number, error) {
	if s == 0 {
		return Number{}, fmt.Errorf("%w: divide %s by zero", ErrDivision, n)
	}
	out := Number{kind: n.kind}
	for i := 0; i < n.kind.Size(); i++ {
		out.v[i] = n.v[i] / s
	}
	return out, out.check()
}

// ScalarOver computes s / component with the components taken in reverse order, so that the
// result stays non-decreasing: (l, m, u) becomes (s/u, s/m, s/l).
func (n Number) ScalarOver(s float64) (Number, error) {
	size := n.kind.Size()
	out := Number{kind: n.kind}
	for i := 0; i < size; i++ {
		c := n.v[size-1-i]
		if c == 0 {
			return Number{}, fmt.Errorf("%w: %g over zero component of %s", ErrDivision, s, n)
		}
		out.v[i] = s / c
	}
	return out, out.check()
}

// Multiply returns the component-wise product of n and o, which must share a kind.
func (n Number) Multiply(o Number) (Number, error) {
	if n.kind != o.kind {
		return Number{}, fmt.Errorf("%w: %s × %s", ErrTypeMismatch, n.kind, o.kind)
	}
	out := Number{kind: n.kind}
	for i := 0; i < n.kind.Size(); i++ {
		out.v[i] = n.v[i] * o.v[i]
	}
	return out, out.check()
}

// RoundTo rounds every component to ndigits decimals, half to even.
func (n Number) RoundTo(ndigits int) Number {
	out := Number{kind: n.kind}
	for i := 0; i < n.kind.Size(); i++ {
		out.v[i] = Round(n.v[i], ndigits)
	}
	return out
}

// Round rounds x to places decimals, half to even, on the exact binary value of x. 2.675 is
// stored just below the midpoint and rounds to 2.67; 0.665 is just above and rounds to 0.67.
// NaN and infinities are returned unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	// -1074 is the smallest binary exponent of a float64, so no digit is dropped.
	return decimal.NewFromFloatWithExponent(x, -1074).RoundBank(int32(places)).InexactFloat64()
}

// Distance is the vertex distance sqrt((1/k) Σ (n_i − o_i)²) between two numbers of the same
// kind, k being the number of components.
func (n Number) Distance(o Number) (float64, error) {
	if n.kind != o.kind {
		return 0, fmt.Errorf("%w: distance %s to %s", ErrTypeMismatch, n.kind, o.kind)
	}
	size := n.kind.Size()
	return floats.Distance(n.v[:size], o.v[:size], 2) / math.Sqrt(float64(size)), nil
}

// Equal reports exact component equality.
func (n Number) Equal(o Number) bool { return n == o }

func (n Number) String() string {
	parts := make([]string, n.kind.Size())
	for i := range parts {
		parts[i] = strconv.FormatFloat(n.v[i], 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (n Number) check() error {
	for i := 0; i < n.kind.Size(); i++ {
		if math.IsNaN(n.v[i]) || math.IsInf(n.v[i], 0) {
			return fmt.Errorf("%w: non-finite component in %s", ErrMalformedInput, n)
		}
		if i > 0 && n.v[i] < n.v[i-1] {
			return fmt.Errorf("%w: components of %s are not non-decreasing", ErrMalformedInput, n)
		}
	}
	return nil
}
