// Package stats wraps the statistical primitives the analysis kernel
// shares: descriptive moments, interpolated percentiles, the three
// correlation measures, and an OLS fit with inference.
package stats

import (
	"math"

	montanaflynn "github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean, or NaN on empty input.
func Mean(data []float64) float64 {
	v, err := montanaflynn.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Sum returns the total of the values.
func Sum(data []float64) float64 {
	v, err := montanaflynn.Sum(data)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Median returns the interpolated median, or NaN on empty input.
func Median(data []float64) float64 {
	v, err := montanaflynn.Median(data)
	if err != nil {
		return math.NaN()
	}
	return v
}

// SampleStdDev returns the sample (n-1) standard deviation, matching the
// describe() convention. NaN when fewer than two values.
func SampleStdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	v, err := montanaflynn.StandardDeviationSample(data)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Min returns the smallest value, or NaN on empty input.
func Min(data []float64) float64 {
	v, err := montanaflynn.Min(data)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Max returns the largest value, or NaN on empty input.
func Max(data []float64) float64 {
	v, err := montanaflynn.Max(data)
	if err != nil {
		return math.NaN()
	}
	return v
}
