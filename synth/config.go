package synth

import (
	"fmt"
	"math"
	"runtime"

	"github.com/cwbudde/algo-vshift/dsp/pitch"
)

const (
	maxCrossfadeMs  = 100.0
	maxToleranceCts = 1200.0
)

// Config holds the renderer parameters.
type Config struct {
	// Mode selects the pitch shifter.
	Mode pitch.Kind
	// ToleranceCents is the largest shift deviation from a segment's first
	// point that still joins the segment.
	ToleranceCents float64
	// CrossfadeMs is the length of segment joins.
	CrossfadeMs float64
	// Workers bounds concurrent segment rendering. Zero selects GOMAXPROCS.
	Workers int
}

// DefaultConfig returns WSOLA rendering with 10 cent segments and 5 ms joins.
func DefaultConfig() Config {
	return Config{
		Mode:           pitch.KindWSOLA,
		ToleranceCents: 10,
		CrossfadeMs:    5,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Mode != pitch.KindWSOLA && c.Mode != pitch.KindVocoder:
		return fmt.Errorf("synth: unknown mode %d", int(c.Mode))
	case math.IsNaN(c.ToleranceCents) || c.ToleranceCents < 0 || c.ToleranceCents > maxToleranceCts:
		return fmt.Errorf("synth tolerance must be in [0, %g] cents: %f", maxToleranceCts, c.ToleranceCents)
	case math.IsNaN(c.CrossfadeMs) || c.CrossfadeMs < 0 || c.CrossfadeMs > maxCrossfadeMs:
		return fmt.Errorf("synth crossfade must be in [0, %g] ms: %f", maxCrossfadeMs, c.CrossfadeMs)
	case c.Workers < 0:
		return fmt.Errorf("synth workers must be >= 0: %d", c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
