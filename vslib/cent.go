package vslib

import "math"

const (
	refCent = 6900
	refFreq = 440.0
)

// Freq2Cent converts a frequency in Hz to absolute cents, where 6900 is
// 440 Hz. Non-positive frequencies map to 0.
func Freq2Cent(hz float64) int {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return 0
	}
	return int(math.Round(refCent + 1200*math.Log2(hz/refFreq)))
}

// Cent2Freq converts absolute cents to a frequency in Hz.
func Cent2Freq(cent int) float64 {
	return refFreq * math.Exp2(float64(cent-refCent)/1200)
}
