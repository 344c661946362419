// Package vector provides brute-force similarity search over dense section vectors.
package vector

import "errors"

// ErrDimensionMismatch is returned when a vector's length differs from the matrix width.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Result is a single search hit. Index is the row position in the matrix, which is
// also the section's position in its collection.
type Result struct {
	Index int
	Score float64 // inner product; cosine similarity for L2-normalized rows
}
