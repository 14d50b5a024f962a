package vslib

import (
	"io"
	"log/slog"

	"github.com/cwbudde/algo-vshift/analysis"
	"github.com/cwbudde/algo-vshift/dsp/dither"
	"github.com/cwbudde/algo-vshift/synth"
)

type config struct {
	logger   *slog.Logger
	analysis analysis.Config
	synth    synth.Config
}

func defaultConfig() config {
	return config{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		analysis: analysis.DefaultConfig(),
		synth:    synth.DefaultConfig(),
	}
}

// Option configures a Project.
type Option func(*config)

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAnalysis sets the analysis parameters used by AddItem.
func WithAnalysis(cfg analysis.Config) Option {
	return func(c *config) {
		c.analysis = cfg
	}
}

// WithSynth sets the rendering parameters. Mode becomes the synth mode of
// newly added items.
func WithSynth(cfg synth.Config) Option {
	return func(c *config) {
		c.synth = cfg
	}
}

// ExportOption configures ExportWaveFile and MixData quantization.
type ExportOption func(*exportConfig)

type exportConfig struct {
	dither  dither.Type
	shaping bool
	seed    *uint64
}

// WithDither selects the dither applied when quantizing the mix.
func WithDither(t dither.Type) ExportOption {
	return func(c *exportConfig) {
		c.dither = t
	}
}

// WithNoiseShaping enables error-feedback noise shaping.
func WithNoiseShaping() ExportOption {
	return func(c *exportConfig) {
		c.shaping = true
	}
}

// WithDitherSeed makes dithered output reproducible.
func WithDitherSeed(seed uint64) ExportOption {
	return func(c *exportConfig) {
		c.seed = &seed
	}
}
