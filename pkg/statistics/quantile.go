package statistics

import (
	"math"
	"sort"
)

// Quantile computes the q-th quantile of values using linear interpolation
// between closest ranks, matching the convention of most dataframe libraries.
// q is clamped to [0, 1]. Returns 0 for empty input.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return QuantileSorted(sorted, q)
}

// QuantileSorted is like Quantile but assumes values are already sorted in
// ascending order and does not copy.
func QuantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0.0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1.0-frac) + sorted[hi]*frac
}
