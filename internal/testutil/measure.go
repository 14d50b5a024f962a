package testutil

import "math"

// RMS returns the root-mean-square level of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// ZeroCrossingFrequency estimates the fundamental of a clean periodic
// signal from its upward zero crossings, interpolated to sub-sample
// precision.
func ZeroCrossingFrequency(x []float64, sampleRate float64) float64 {
	first, last := -1.0, -1.0
	count := 0
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			pos := float64(i-1) + x[i-1]/(x[i-1]-x[i])
			if first < 0 {
				first = pos
			}
			last = pos
			count++
		}
	}
	if count < 2 {
		return 0
	}
	return float64(count-1) * sampleRate / (last - first)
}

// Cents returns the interval from a to b in cents.
func Cents(a, b float64) float64 {
	return 1200 * math.Log2(b/a)
}
