package matching

import "math"

// Cosine returns the cosine similarity of a and b over their common prefix.
// Empty input or a zero norm yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Round4 rounds v to four decimals for reporting.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
