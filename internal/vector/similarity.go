package vector

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
// Vectors of different length yield 0.
func InnerProduct(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
