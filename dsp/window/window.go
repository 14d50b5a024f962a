package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeSqrtHann
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeSqrtHann:
		return "sqrt-hann"
	default:
		return "unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic (FFT framing) form instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
// Unknown types yield a rectangular window.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	denom := float64(length - 1)
	if cfg.periodic {
		denom = float64(length)
	}

	for i := range out {
		x := float64(i) / denom
		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(2*math.Pi*x)
		case TypeSqrtHann:
			out[i] = math.Sqrt(0.5 - 0.5*math.Cos(2*math.Pi*x))
		default:
			out[i] = 1
		}
	}

	return out
}

// Apply multiplies buf in place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Hann returns symmetric or periodic Hann coefficients.
func Hann(size int, opts ...Option) []float64 {
	return Generate(TypeHann, size, opts...)
}
