package utils

import "math"

// MeanVector averages equally sized vectors and L2-normalizes the result.
// It returns nil when vectors is empty or the sizes differ.
func MeanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	var norm float64
	for i := range sum {
		sum[i] /= float64(len(vectors))
		norm += sum[i] * sum[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	for i, x := range sum {
		if norm > 0 {
			x /= norm
		}
		out[i] = float32(x)
	}
	return out
}
