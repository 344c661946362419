package utils

import "math"

// NormL2 returns the L2 norm of x.
func NormL2(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NormalizeL2 normalizes the slice in place to unit L2 norm.
// If the norm is zero, the slice is unchanged.
func NormalizeL2(x []float64) {
	norm := NormL2(x)
	if norm == 0 {
		return
	}
	for i := range x {
		x[i] /= norm
	}
}
