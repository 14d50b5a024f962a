package resample

import "math"

// Convert resamples in from fromRate to toRate in one shot.
//
// The result has round(len(in)*toRate/fromRate) samples and is aligned with
// the input: the filter delay is skipped and the tail is flushed with zeros.
func Convert(in []float64, fromRate, toRate float64, opts ...Option) ([]float64, error) {
	if !validRate(fromRate) || !validRate(toRate) {
		return nil, ErrInvalidRate
	}

	if len(in) == 0 {
		return nil, nil
	}

	if fromRate == toRate {
		out := make([]float64, len(in))
		copy(out, in)

		return out, nil
	}

	r, err := NewForRates(fromRate, toRate, opts...)
	if err != nil {
		return nil, err
	}

	want := int(math.Round(float64(len(in)) * toRate / fromRate))
	if want <= 0 {
		return nil, nil
	}

	lat := r.Latency()
	r.inputIndex = lat

	padded := make([]float64, len(in)+lat+1)
	copy(padded, in)

	out := r.Process(padded)

	return fitLength(out, want), nil
}

func fitLength(in []float64, n int) []float64 {
	if len(in) == n {
		return in
	}

	out := make([]float64, n)
	copy(out, in)

	return out
}
