package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation.
	QualityBest
)

// Profile exposes filter parameters for each quality mode.
type Profile struct {
	TapsPerPhase int
	CutoffScale  float64
	KaiserBeta   float64
}

// QualityProfile returns the profile used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5.0}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9.0}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures the resampler.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithMaxDenominator caps the denominator used to approximate rate ratios.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Resampler performs rational sample-rate conversion using a polyphase FIR.
type Resampler struct {
	up   int
	down int

	profile Profile
	phases  [][]float64
	maxLen  int

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)
	profile := QualityProfile(cfg.quality)

	phases, maxLen, err := designPolyphase(up, down, profile)
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:      up,
		down:    down,
		profile: profile,
		phases:  phases,
		maxLen:  maxLen,
		history: make([]float64, 0, maxLen),
	}, nil
}

// NewForRates creates a resampler by approximating outRate/inRate as a ratio.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	cfg := newConfig(opts)
	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	return NewRational(up, down, opts...)
}

// Ratio returns the reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) { return r.up, r.down }

// Latency returns the filter delay in input samples.
func (r *Resampler) Latency() int { return r.profile.TapsPerPhase / 2 }

// Reset clears internal filter state.
func (r *Resampler) Reset() {
	r.phase = 0
	r.inputIndex = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts an input block and keeps state for the next call.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	work := make([]float64, len(r.history)+len(input))
	copy(work, r.history)
	copy(work[len(r.history):], input)

	baseIndex := r.totalIn - len(r.history)
	lastAvail := r.totalIn + len(input) - 1

	out := make([]float64, 0, len(input)*r.up/r.down+1)
	for r.inputIndex <= lastAvail {
		var y float64
		for k, c := range r.phases[r.phase] {
			idx := r.inputIndex - k
			if idx < baseIndex || idx > lastAvail {
				continue
			}

			y += c * work[idx-baseIndex]
		}

		out = append(out, y)

		r.phase += r.down
		r.inputIndex += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(r.maxLen, len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return out
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
