// Package stats holds the numeric policies shared by the analytics catalog
// and its SQLite extension functions.
package stats

import "math"

// ClampedSqrt returns sqrt(max(x, 0)). NaN and negative inputs give 0.
func ClampedSqrt(x float64) float64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}

// PopulationStdDev computes the population standard deviation from the
// first two moments: sqrt(E[x^2] - E[x]^2). Floating-point cancellation can
// push the variance slightly below zero, so it is clamped. An empty input
// gives 0.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	n := float64(len(values))
	mean := sum / n
	return ClampedSqrt(sumSq/n - mean*mean)
}

// Mean returns the arithmetic mean, or false for an empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// SafeRatio divides num by den. A zero denominator gives false, mirroring
// NULLIF(den, 0) in SQL.
func SafeRatio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// Round2 rounds half away from zero to two decimal places, like SQLite ROUND(x, 2).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
