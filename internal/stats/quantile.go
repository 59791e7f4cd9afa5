package stats

import (
	"math"
	"sort"
)

// Quantile computes the q-th quantile (q in [0,1]) with linear
// interpolation between closest ranks. montanaflynn's Percentile uses
// the exclusive nearest-rank method, which disagrees with the
// interpolated definition percentile summaries require, so this is
// computed directly.
func Quantile(data []float64, q float64) float64 {
	if len(data) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// IQRBounds returns the [Q1 - k*IQR, Q3 + k*IQR] outlier fence for the
// given multiplier k.
func IQRBounds(data []float64, k float64) (lower, upper float64) {
	q1 := Quantile(data, 0.25)
	q3 := Quantile(data, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
