package pitch

import "math"

// hermite4 computes cubic 4-point interpolation between x0 and x1.
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// stretchTo resamples input to exactly outLen samples, mapping the first
// and last samples onto each other.
func stretchTo(input []float64, outLen int) []float64 {
	if outLen <= 0 || len(input) == 0 {
		return nil
	}

	out := make([]float64, outLen)
	if len(input) == 1 || outLen == 1 {
		for i := range out {
			out[i] = input[0]
		}
		return out
	}

	step := float64(len(input)-1) / float64(outLen-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(math.Floor(pos))
		out[i] = hermite4(pos-float64(idx),
			clampAt(input, idx-1), clampAt(input, idx),
			clampAt(input, idx+1), clampAt(input, idx+2))
	}
	return out
}

func zeroAt(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}
	return x[idx]
}

func clampAt(x []float64, idx int) float64 {
	switch {
	case len(x) == 0:
		return 0
	case idx < 0:
		return x[0]
	case idx >= len(x):
		return x[len(x)-1]
	default:
		return x[idx]
	}
}
