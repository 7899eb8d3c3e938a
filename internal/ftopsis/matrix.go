package ftopsis

import (
	"fmt"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// Matrix is a rows × criteria table of fuzzy numbers of a single kind. Rows are elements in a
// decision matrix and profiles in a profile matrix. A Matrix is never mutated after NewMatrix.
type Matrix struct {
	rows     []string
	criteria []string
	cells    [][]fuzzy.Number
	kind     fuzzy.Kind
	rowIdx   map[string]int
	colIdx   map[string]int
}

// NewMatrix checks shape, name uniqueness and kind consistency and takes ownership of cells.
func NewMatrix(rows, criteria []string, cells [][]fuzzy.Number) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: matrix has no rows", fuzzy.ErrMalformedInput)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: matrix has no criteria", fuzzy.ErrMalformedInput)
	}
	if len(cells) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows named, %d given", fuzzy.ErrMalformedInput, len(rows), len(cells))
	}

	rowIdx, err := indexNames("row", rows)
	if err != nil {
		return nil, err
	}
	colIdx, err := indexNames("criterion", criteria)
	if err != nil {
		return nil, err
	}

	var kind fuzzy.Kind
	for i, row := range cells {
		if len(row) != len(criteria) {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", fuzzy.ErrMalformedInput, rows[i], len(row), len(criteria))
		}
		for j, n := range row {
			if n.IsZero() {
				return nil, fmt.Errorf("%w: missing value at %q/%q", fuzzy.ErrMalformedInput, rows[i], criteria[j])
			}
			if kind == 0 {
				kind = n.Kind()
			}
			if n.Kind() != kind {
				return nil, fmt.Errorf("%w: %q/%q is %s, matrix is %s", fuzzy.ErrTypeMismatch, rows[i], criteria[j], n.Kind(), kind)
			}
		}
	}

	return &Matrix{
		rows:     append([]string(nil), rows...),
		criteria: append([]string(nil), criteria...),
		cells:    cells,
		kind:     kind,
		rowIdx:   rowIdx,
		colIdx:   colIdx,
	}, nil
}

func indexNames(what string, names []string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := idx[n]; dup {
			return nil, fmt.Errorf("%w: duplicate %s %q", fuzzy.ErrMalformedInput, what, n)
		}
		idx[n] = i
	}
	return idx, nil
}

func (m *Matrix) Kind() fuzzy.Kind { return m.kind }

// Len is the number of rows.
func (m *Matrix) Len() int { return len(m.rows) }

// Rows returns the row names in input order.
func (m *Matrix) Rows() []string { return append([]string(nil), m.rows...) }

// Criteria returns the criterion names in column order.
func (m *Matrix) Criteria() []string { return append([]string(nil), m.criteria...) }

// At returns the cell at row i, column j.
func (m *Matrix) At(i, j int) fuzzy.Number { return m.cells[i][j] }

// Cell looks a value up by row and criterion name.
func (m *Matrix) Cell(row, criterion string) (fuzzy.Number, bool) {
	i, ok := m.rowIdx[row]
	if !ok {
		return fuzzy.Number{}, false
	}
	j, ok := m.colIdx[criterion]
	if !ok {
		return fuzzy.Number{}, false
	}
	return m.cells[i][j], true
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []fuzzy.Number {
	return append([]fuzzy.Number(nil), m.cells[i]...)
}

func (m *Matrix) sameCriteria(o *Matrix) bool {
	if len(m.criteria) != len(o.criteria) {
		return false
	}
	for i := range m.criteria {
		if m.criteria[i] != o.criteria[i] {
			return false
		}
	}
	return true
}

// mapCells builds a matrix of the same shape by applying fn to every cell.
func (m *Matrix) mapCells(fn func(i, j int, n fuzzy.Number) (fuzzy.Number, error)) (*Matrix, error) {
	cells := make([][]fuzzy.Number, len(m.cells))
	for i, row := range m.cells {
		cells[i] = make([]fuzzy.Number, len(row))
		for j, n := range row {
			out, err := fn(i, j, n)
			if err != nil {
				return nil, fmt.Errorf("%q/%q: %w", m.rows[i], m.criteria[j], err)
			}
			cells[i][j] = out
		}
	}
	return &Matrix{
		rows:     m.rows,
		criteria: m.criteria,
		cells:    cells,
		kind:     m.kind,
		rowIdx:   m.rowIdx,
		colIdx:   m.colIdx,
	}, nil
}
