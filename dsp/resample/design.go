package resample

import (
	"errors"
	"fmt"
	"math"
)

// designPolyphase builds an odd-length Kaiser-windowed sinc prototype of
// TapsPerPhase*up+1 taps and splits it into up branches. The odd length puts
// the group delay at exactly TapsPerPhase/2 input samples.
func designPolyphase(up, down int, p Profile) ([][]float64, int, error) {
	if p.TapsPerPhase <= 0 || p.TapsPerPhase%2 != 0 {
		return nil, 0, fmt.Errorf("resample: taps per phase must be even and > 0: %d", p.TapsPerPhase)
	}

	nTaps := p.TapsPerPhase*up + 1

	fc := 0.5 / float64(max(up, down)) * p.CutoffScale
	if fc <= 0 || fc >= 0.5 {
		return nil, 0, fmt.Errorf("resample: invalid cutoff %.6f", fc)
	}

	taps := make([]float64, nTaps)
	center := 0.5 * float64(nTaps-1)

	var sum float64
	for n := range nTaps {
		t := float64(n) - center
		taps[n] = 2 * fc * sinc(2*fc*t) * kaiser(n, nTaps, p.KaiserBeta)
		sum += taps[n]
	}

	if sum == 0 {
		return nil, 0, errors.New("resample: designed zero-sum filter")
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}

	phases := make([][]float64, up)
	maxLen := 0

	for ph := range up {
		branch := make([]float64, 0, nTaps/up+1)
		for i := ph; i < nTaps; i += up {
			branch = append(branch, taps[i])
		}

		maxLen = max(maxLen, len(branch))
		phases[ph] = branch
	}

	return phases, maxLen, nil
}

// approximateRatio finds num/den close to v with den <= maxDen using
// continued fractions.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	p0, q0 := 1.0, 0.0
	p1, q1 := math.Floor(v), 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)

		p2 := a*p1 + p0
		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))
	den = int(math.Round(q1))
	if num <= 0 || den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return besselI0(beta*a) / besselI0(beta)
}

func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0

	x2 := x * x / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
