package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	minBitDepth = 8
	maxBitDepth = 32
)

type config struct {
	bitDepth  int
	typ       Type
	amplitude float64
	shaping   bool
	rng       *rand.Rand
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth (8-32, default 16).
func WithBitDepth(bits int) Option {
	return func(c *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}
		c.bitDepth = bits
		return nil
	}
}

// WithType sets the dither PDF (default None).
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}
		c.typ = t
		return nil
	}
}

// WithAmplitude sets the dither amplitude in LSB (default 1).
func WithAmplitude(amp float64) Option {
	return func(c *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}
		c.amplitude = amp
		return nil
	}
}

// WithNoiseShaping enables the F-weighted error-feedback shaper.
func WithNoiseShaping() Option {
	return func(c *config) error {
		c.shaping = true
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return nil
	}
}

// Quantizer maps samples in [-1, 1] to signed integers of a given bit depth.
//
// Full scale is 2^(bits-1): an integer sample converted to float by dividing
// by full scale quantizes back to itself when dither is off. Out-of-range
// input is clipped.
type Quantizer struct {
	bitDepth  int
	typ       Type
	amplitude float64
	shaper    Shaper
	rng       *rand.Rand

	scale float64
	lo    int
	hi    int
}

// NewQuantizer creates a Quantizer. The default is 16-bit without dither or
// noise shaping.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: 16, typ: None, amplitude: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:  cfg.bitDepth,
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		rng:       cfg.rng,
		shaper:    NewFIRShaper(nil),
	}
	if cfg.shaping {
		q.shaper = NewFWeightedShaper()
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(q.bitDepth - 1))
	q.scale = full
	q.lo = -int(full)
	q.hi = int(full) - 1
	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither type.
func (q *Quantizer) Type() Type { return q.typ }

// Quantize converts one sample.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) {
		x = 0
	}

	shaped := q.shaper.Shape(x * q.scale)
	v := int(math.Round(shaped + q.noise()))
	v = max(q.lo, min(q.hi, v))
	q.shaper.RecordError(float64(v) - shaped)
	return v
}

// QuantizeBlock converts src into dst, which must be at least as long.
func (q *Quantizer) QuantizeBlock(dst []int, src []float64) {
	for i, x := range src {
		dst[i] = q.Quantize(x)
	}
}

// Reset clears the noise shaper history.
func (q *Quantizer) Reset() {
	q.shaper.Reset()
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.amplitude * (q.rng.Float64()*2 - 1)
	case Triangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	default:
		return 0
	}
}
