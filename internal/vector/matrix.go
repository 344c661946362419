package vector

import (
	"context"
	"fmt"
	"sort"
)

// Matrix is an immutable set of equal-length row vectors searched by brute-force inner product.
// Safe for concurrent use.
type Matrix struct {
	dimensions int
	rows       [][]float64
}

// NewMatrix copies rows into a matrix of the given width. Every row must have exactly
// dimensions entries. A width of 0 is valid and produces only zero scores.
func NewMatrix(dimensions int, rows [][]float64) (*Matrix, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	m := &Matrix{
		dimensions: dimensions,
		rows:       make([][]float64, len(rows)),
	}
	for i, row := range rows {
		if len(row) != dimensions {
			return nil, fmt.Errorf("row %d: got %d, expected %d: %w", i, len(row), dimensions, ErrDimensionMismatch)
		}
		m.rows[i] = append([]float64(nil), row...)
	}
	return m, nil
}

// Dimensions returns the row width.
func (m *Matrix) Dimensions() int {
	return m.dimensions
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return len(m.rows)
}

// Scores returns the inner product of query with every row, in row order.
func (m *Matrix) Scores(query []float64) ([]float64, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query: got %d, expected %d: %w", len(query), m.dimensions, ErrDimensionMismatch)
	}
	scores := make([]float64, len(m.rows))
	for i, row := range m.rows {
		scores[i] = InnerProduct(query, row)
	}
	return scores, nil
}

// Search returns the top-k rows by inner product, highest first. Equal scores keep row
// order. k larger than the matrix returns every row; k <= 0 returns nothing.
func (m *Matrix) Search(ctx context.Context, query []float64, k int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores, err := m.Scores(query)
	if err != nil {
		return nil, err
	}
	if k <= 0 || len(scores) == 0 {
		return nil, nil
	}
	results := make([]Result, len(scores))
	for i, s := range scores {
		results[i] = Result{Index: i, Score: s}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}
