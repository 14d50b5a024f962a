package analysis

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// peakRatio selects the first key maximum within this fraction of the
	// highest one.
	peakRatio = 0.9
	tiny      = 1e-20
)

// nsdf computes the normalized square difference function of one frame.
// The frame is zero-padded to twice its length so that the circular
// autocorrelation equals the linear one.
type nsdf struct {
	size int
	plan *algofft.Plan[complex128]

	spec []complex128
	corr []complex128
	re   []float64
	im   []float64
	pow  []float64
	out  []float64
}

func newNSDF(size int) (*nsdf, error) {
	plan, err := algofft.NewPlan64(2 * size)
	if err != nil {
		return nil, fmt.Errorf("analysis: failed to create FFT plan: %w", err)
	}
	return &nsdf{
		size: size,
		plan: plan,
		spec: make([]complex128, 2*size),
		corr: make([]complex128, 2*size),
		re:   make([]float64, 2*size),
		im:   make([]float64, 2*size),
		pow:  make([]float64, 2*size),
		out:  make([]float64, size),
	}, nil
}

// compute fills n.out with NSDF values for lags [0, size) and returns the
// frame energy. A silent frame returns zero and leaves out cleared.
func (n *nsdf) compute(frame []float64) ([]float64, error) {
	clear(n.out)

	energy := 0.0
	for i, v := range frame {
		n.spec[i] = complex(v, 0)
		energy += v * v
	}
	for i := len(frame); i < len(n.spec); i++ {
		n.spec[i] = 0
	}
	if energy < tiny {
		return n.out, nil
	}

	if err := n.plan.Forward(n.spec, n.spec); err != nil {
		return nil, fmt.Errorf("analysis: forward FFT failed: %w", err)
	}
	for i, c := range n.spec {
		n.re[i] = real(c)
		n.im[i] = imag(c)
	}
	vecmath.Power(n.pow, n.re, n.im)
	for i, p := range n.pow {
		n.spec[i] = complex(p, 0)
	}
	if err := n.plan.Inverse(n.corr, n.spec); err != nil {
		return nil, fmt.Errorf("analysis: inverse FFT failed: %w", err)
	}

	// m(tau) = sum over the overlap of x[j]^2 + x[j+tau]^2.
	m := 2 * energy
	for tau := range n.size {
		if tau > 0 {
			m -= frame[tau-1]*frame[tau-1] + frame[n.size-tau]*frame[n.size-tau]
		}
		if m > tiny {
			n.out[tau] = 2 * real(n.corr[tau]) / m
		}
	}
	return n.out, nil
}

// pickPeak returns the refined lag and clarity of the first key maximum that
// reaches peakRatio of the largest key maximum. Lags beyond maxLag are not
// considered. ok is false when no positive region follows the first zero
// crossing.
func pickPeak(values []float64, maxLag int) (lag, clarity float64, ok bool) {
	limit := min(maxLag+2, len(values)-1)

	tau := 1
	for tau < limit && values[tau] > 0 {
		tau++
	}

	var keys []int
	for tau < limit {
		for tau < limit && values[tau] <= 0 {
			tau++
		}
		best := -1
		for tau < limit && values[tau] > 0 {
			if best < 0 || values[tau] > values[best] {
				best = tau
			}
			tau++
		}
		if best > 0 {
			keys = append(keys, best)
		}
	}
	if len(keys) == 0 {
		return 0, 0, false
	}

	highest := 0.0
	for _, k := range keys {
		highest = max(highest, values[k])
	}

	chosen := keys[0]
	for _, k := range keys {
		if values[k] >= peakRatio*highest {
			chosen = k
			break
		}
	}

	lag, clarity = parabolic(values, chosen)
	return lag, clarity, true
}

// parabolic refines a local maximum at index i by fitting a parabola
// through its neighbours.
func parabolic(values []float64, i int) (pos, peak float64) {
	if i <= 0 || i >= len(values)-1 {
		return float64(i), values[i]
	}
	a, b, c := values[i-1], values[i], values[i+1]
	den := a - 2*b + c
	if den == 0 {
		return float64(i), b
	}
	d := 0.5 * (a - c) / den
	return float64(i) + d, b - 0.25*(a-c)*d
}
