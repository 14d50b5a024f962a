// Package testutil holds deterministic signals and measurements shared by
// the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// HarmonicTone generates a voice-like tone with the given number of
// harmonics at 1/k amplitude.
func HarmonicTone(freqHz, sampleRate, amplitude float64, harmonics, length int) []float64 {
	out := make([]float64, length)
	norm := 0.0
	for k := 1; k <= harmonics; k++ {
		norm += 1 / float64(k)
	}
	for k := 1; k <= harmonics; k++ {
		if freqHz*float64(k) >= sampleRate/2 {
			break
		}
		step := 2 * math.Pi * freqHz * float64(k) / sampleRate
		a := amplitude / (float64(k) * norm)
		for i := range out {
			out[i] += a * math.Sin(step*float64(i))
		}
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Concat joins signals end to end.
func Concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
