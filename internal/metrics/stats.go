// Package metrics turns raw per-phase event streams (tap times, motion
// samples) into the clinical result records, and combines per-hand results
// into session-level scores. All functions degrade to zeroed results on
// short input rather than returning an error.
package metrics

import "math"

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// stdDev returns the population standard deviation around the given mean.
func stdDev(data []float64, avg float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sumSqDiff := 0.0
	for _, v := range data {
		diff := v - avg
		sumSqDiff += diff * diff
	}
	return math.Sqrt(sumSqDiff / float64(len(data)))
}

// clamp limits v to the [lo, hi] range.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
