package synth

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// envelope interpolates one value per control point to a per-sample curve.
// Samples before the first point hold its value, as do samples after the
// last. Between two equal values the curve is exactly that value.
func envelope(values []float64, length, sampleRate, ctrlPntPs int) []float64 {
	out := make([]float64, length)
	if len(values) == 0 {
		return out
	}

	step := float64(sampleRate) / float64(ctrlPntPs)
	for i := range out {
		pos := float64(i) / step
		k := int(math.Floor(pos))
		switch {
		case k >= len(values)-1:
			out[i] = values[len(values)-1]
		default:
			a, b := values[k], values[k+1]
			if a == b {
				out[i] = a
				continue
			}
			out[i] = a + (b-a)*(pos-float64(k))
		}
	}
	return out
}

func constant(values []float64, v float64) bool {
	for _, x := range values {
		if x != v {
			return false
		}
	}
	return true
}

// applyGain multiplies every channel by the gain curve.
func applyGain(channels [][]float64, gains []float64, sampleRate, ctrlPntPs int) {
	if len(channels) == 0 || constant(gains, 1) {
		return
	}
	env := envelope(gains, len(channels[0]), sampleRate, ctrlPntPs)
	for _, ch := range channels {
		vecmath.MulBlockInPlace(ch, env)
	}
}

// panMono spreads a mono channel to stereo with a constant-power law that is
// unity at the center: at pan p the gains are sqrt(2)*cos and sqrt(2)*sin of
// (p+1)*pi/4.
func panMono(src []float64, pans []float64, sampleRate, ctrlPntPs int) [][]float64 {
	left := append([]float64(nil), src...)
	right := append([]float64(nil), src...)
	if constant(pans, 0) {
		return [][]float64{left, right}
	}

	env := envelope(pans, len(src), sampleRate, ctrlPntPs)
	gl := make([]float64, len(src))
	gr := make([]float64, len(src))
	for i, p := range env {
		theta := (p + 1) * math.Pi / 4
		gl[i] = math.Sqrt2 * math.Cos(theta)
		gr[i] = math.Sqrt2 * math.Sin(theta)
	}
	vecmath.MulBlockInPlace(left, gl)
	vecmath.MulBlockInPlace(right, gr)
	return [][]float64{left, right}
}

// balance attenuates the opposite side of a stereo pair: a pan below zero
// scales the right channel by 1+p, above zero the left by 1-p.
func balance(channels [][]float64, pans []float64, sampleRate, ctrlPntPs int) {
	if len(channels) != 2 || constant(pans, 0) {
		return
	}
	env := envelope(pans, len(channels[0]), sampleRate, ctrlPntPs)
	for i, p := range env {
		switch {
		case p < 0:
			channels[1][i] *= 1 + p
		case p > 0:
			channels[0][i] *= 1 - p
		}
	}
}
