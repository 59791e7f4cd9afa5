package stats

import (
	"math"
	"sort"

	montanaflynn "github.com/montanaflynn/stats"
)

// Pearson returns the Pearson product-moment coefficient, or NaN when
// it is undefined (fewer than two pairs, zero variance).
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	v, err := montanaflynn.Pearson(x, y)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// CramersV computes the bias-corrected Cramér's V association between
// two categorical series of equal length. Returns NaN when the
// contingency table degenerates to a single row or column.
func CramersV(x, y []string) float64 {
	n := len(x)
	if n == 0 || len(y) != n {
		return math.NaN()
	}

	// Contingency counts with sorted category orders so the chi-square
	// accumulation is reproducible bit for bit.
	xCats := distinctSorted(x)
	yCats := distinctSorted(y)
	r, k := len(xCats), len(yCats)
	if r < 2 || k < 2 {
		return math.NaN()
	}

	xIdx := indexOf(xCats)
	yIdx := indexOf(yCats)
	observed := make([][]float64, r)
	for i := range observed {
		observed[i] = make([]float64, k)
	}
	rowTotals := make([]float64, r)
	colTotals := make([]float64, k)
	for i := range x {
		ri, ci := xIdx[x[i]], yIdx[y[i]]
		observed[ri][ci]++
		rowTotals[ri]++
		colTotals[ci]++
	}

	total := float64(n)
	chiSquare := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected == 0 {
				continue
			}
			diff := observed[i][j] - expected
			chiSquare += diff * diff / expected
		}
	}

	// Bergsma-style bias correction.
	phi2 := chiSquare / total
	phi2Corr := math.Max(0, phi2-float64((k-1)*(r-1))/(total-1))
	rCorr := float64(r) - float64((r-1)*(r-1))/(total-1)
	kCorr := float64(k) - float64((k-1)*(k-1))/(total-1)
	denom := math.Min(kCorr-1, rCorr-1)
	if denom <= 0 {
		return math.NaN()
	}
	return math.Sqrt(phi2Corr / denom)
}

// CorrelationRatio computes eta, the share of the numeric variable's
// spread explained by category membership. Returns NaN when the total
// sum of squares is zero.
func CorrelationRatio(categories []string, values []float64) float64 {
	if len(categories) == 0 || len(categories) != len(values) {
		return math.NaN()
	}

	overall := Mean(values)
	if math.IsNaN(overall) {
		return math.NaN()
	}

	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for i, c := range categories {
		sums[c] += values[i]
		counts[c]++
	}

	cats := make([]string, 0, len(sums))
	for c := range sums {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	ssBetween := 0.0
	for _, c := range cats {
		mean := sums[c] / counts[c]
		ssBetween += counts[c] * (mean - overall) * (mean - overall)
	}

	ssTotal := 0.0
	for _, v := range values {
		ssTotal += (v - overall) * (v - overall)
	}
	if ssTotal <= 0 {
		return math.NaN()
	}
	return math.Sqrt(ssBetween / ssTotal)
}

func distinctSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
