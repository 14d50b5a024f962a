package analysis

import (
	"fmt"
	"math"
)

// Config holds the analyzer parameters.
type Config struct {
	// CtrlPntPs is the number of control points (frames) per second.
	CtrlPntPs int
	// MinF0 and MaxF0 bound the accepted fundamental in Hz.
	MinF0 float64
	MaxF0 float64
	// VoicingThreshold is the minimum NSDF clarity of a voiced frame.
	VoicingThreshold float64
	// SilenceDB is the RMS level in dBFS below which frames are unvoiced.
	SilenceDB float64
	// FrameSize is the NSDF window length. It is raised to fit two periods
	// of MinF0 when the sample rate requires it.
	FrameSize int
}

// DefaultConfig returns the defaults used for speech and singing.
func DefaultConfig() Config {
	return Config{
		CtrlPntPs:        100,
		MinF0:            55,
		MaxF0:            1200,
		VoicingThreshold: 0.6,
		SilenceDB:        -50,
		FrameSize:        2048,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.CtrlPntPs < 1 || c.CtrlPntPs > 1000:
		return fmt.Errorf("analysis control points per second must be in [1, 1000]: %d", c.CtrlPntPs)
	case !finite(c.MinF0) || c.MinF0 <= 0:
		return fmt.Errorf("analysis min f0 must be positive and finite: %f", c.MinF0)
	case !finite(c.MaxF0) || c.MaxF0 <= c.MinF0:
		return fmt.Errorf("analysis max f0 must exceed min f0: min=%g max=%g", c.MinF0, c.MaxF0)
	case !finite(c.VoicingThreshold) || c.VoicingThreshold < 0 || c.VoicingThreshold > 1:
		return fmt.Errorf("analysis voicing threshold must be in [0, 1]: %f", c.VoicingThreshold)
	case !finite(c.SilenceDB) || c.SilenceDB > 0:
		return fmt.Errorf("analysis silence level must be <= 0 dB: %f", c.SilenceDB)
	case c.FrameSize < 256 || c.FrameSize&(c.FrameSize-1) != 0:
		return fmt.Errorf("analysis frame size must be power-of-two and >= 256: %d", c.FrameSize)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
