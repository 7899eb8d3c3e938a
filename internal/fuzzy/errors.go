package fuzzy

import "errors"

var (
	// ErrMalformedInput reports structurally invalid fuzzy data: wrong parameter counts,
	// non-finite values, or components that are not non-decreasing.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDivision reports a zero denominator. It always means the dataset is degenerate.
	ErrDivision = errors.New("division by zero")

	// ErrTypeMismatch reports an operation that mixes triangular and trapezoidal numbers.
	ErrTypeMismatch = errors.New("fuzzy number type mismatch")
)
