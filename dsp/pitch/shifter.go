package pitch

import (
	"fmt"
	"math"
)

const (
	// MinRatio is the lowest supported pitch ratio (two octaves down).
	MinRatio = 0.25
	// MaxRatio is the highest supported pitch ratio (two octaves up).
	MaxRatio = 4.0

	identityEps = 1e-9
	tiny        = 1e-12
)

// Shifter is the shared API of the pitch shifters.
type Shifter interface {
	SampleRate() float64
	Ratio() float64
	SetRatio(ratio float64) error
	SetCents(cents float64) error
	// Context is the number of samples of surrounding material a caller
	// should include on each side when shifting a region cut out of a
	// longer signal.
	Context() int
	Reset()
	Process(input []float64) []float64
}

var (
	_ Shifter = (*WSOLA)(nil)
	_ Shifter = (*Vocoder)(nil)
)

// Kind selects a Shifter implementation.
type Kind int

const (
	KindWSOLA Kind = iota
	KindVocoder
)

// String returns the kind name used in configuration files.
func (k Kind) String() string {
	switch k {
	case KindWSOLA:
		return "wsola"
	case KindVocoder:
		return "spectral"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a configuration name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "wsola", "":
		return KindWSOLA, nil
	case "spectral", "vocoder":
		return KindVocoder, nil
	default:
		return 0, fmt.Errorf("pitch: unknown shifter kind %q", s)
	}
}

// New constructs a Shifter of the given kind.
func New(kind Kind, sampleRate float64) (Shifter, error) {
	switch kind {
	case KindWSOLA:
		w, err := NewWSOLA(sampleRate)
		if err != nil {
			return nil, err
		}
		return w, nil
	case KindVocoder:
		v, err := NewVocoder(sampleRate)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("pitch: unknown shifter kind %d", int(kind))
	}
}

// CentsToRatio converts an interval in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}

// RatioToCents converts a frequency ratio to an interval in cents.
func RatioToCents(ratio float64) float64 {
	return 1200 * math.Log2(ratio)
}

func validateRatio(ratio float64) error {
	if !isFinitePositive(ratio) || ratio < MinRatio || ratio > MaxRatio {
		return fmt.Errorf("pitch ratio must be in [%g, %g]: %g", MinRatio, MaxRatio, ratio)
	}
	return nil
}

func ratioFromCents(cents float64) (float64, error) {
	if math.IsNaN(cents) || math.IsInf(cents, 0) {
		return 0, fmt.Errorf("pitch shift must be finite: %f cents", cents)
	}
	ratio := CentsToRatio(cents)
	if err := validateRatio(ratio); err != nil {
		return 0, fmt.Errorf("pitch shift of %g cents out of range: %w", cents, err)
	}
	return ratio, nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func copyOf(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
