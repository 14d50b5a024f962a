package dither

// Shaper applies error-feedback noise shaping. Per sample:
//  1. shaped := s.Shape(scaled)
//  2. q := quantize(shaped)
//  3. s.RecordError(float64(q) - shaped)
type Shaper interface {
	Shape(input float64) float64
	RecordError(err float64)
	Reset()
}

// F-weighted 9th-order error-feedback coefficients.
var coeff9FC = []float64{
	2.412, -3.370, 3.937, -4.174, 3.353,
	-2.205, 1.281, -0.569, 0.0847,
}

// FIRShaper subtracts weighted past quantization errors from the input.
type FIRShaper struct {
	coeffs  []float64
	history []float64
	pos     int
}

// NewFIRShaper creates a shaper with the given coefficients. An empty slice
// yields a pass-through shaper.
func NewFIRShaper(coeffs []float64) *FIRShaper {
	c := append([]float64(nil), coeffs...)
	return &FIRShaper{coeffs: c, history: make([]float64, len(c))}
}

// NewFWeightedShaper returns the 9th-order F-weighted shaper.
func NewFWeightedShaper() *FIRShaper {
	return NewFIRShaper(coeff9FC)
}

// Shape applies the feedback filter and advances the error ring.
func (s *FIRShaper) Shape(input float64) float64 {
	n := len(s.coeffs)
	if n == 0 {
		return input
	}
	for i, c := range s.coeffs {
		input -= c * s.history[(n+s.pos-i)%n]
	}
	s.pos = (s.pos + 1) % n
	return input
}

// RecordError stores the quantization error of the current sample.
func (s *FIRShaper) RecordError(err float64) {
	if len(s.history) == 0 {
		return
	}
	s.history[s.pos] = err
}

// Reset clears the error history.
func (s *FIRShaper) Reset() {
	clear(s.history)
	s.pos = 0
}
