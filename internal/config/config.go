// Package config loads the vsshift YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-vshift/analysis"
	"github.com/cwbudde/algo-vshift/dsp/dither"
	"github.com/cwbudde/algo-vshift/dsp/pitch"
	"github.com/cwbudde/algo-vshift/synth"
	"github.com/cwbudde/algo-vshift/vslib"
)

var validate = validator.New()

// Config is the complete tool configuration.
type Config struct {
	// ShiftCents is added to the edited pitch of every control point.
	ShiftCents int      `yaml:"shift_cents" validate:"gte=-2400,lte=2400"`
	Export     Export   `yaml:"export"`
	Analysis   Analysis `yaml:"analysis"`
	Synth      Synth    `yaml:"synth"`
	Log        Log      `yaml:"log"`
}

// Export controls the written wave file.
type Export struct {
	Bits         int    `yaml:"bits" validate:"oneof=8 16 24 32"`
	Channels     int    `yaml:"channels" validate:"oneof=1 2"`
	Dither       string `yaml:"dither" validate:"omitempty,oneof=none rectangular rpdf triangular tpdf"`
	NoiseShaping bool   `yaml:"noise_shaping"`
	// Seed makes dither reproducible when non-zero.
	Seed uint64 `yaml:"seed"`
}

// Analysis mirrors analysis.Config.
type Analysis struct {
	CtrlPntPs        int     `yaml:"ctrl_pnt_ps" validate:"gte=1,lte=1000"`
	MinF0            float64 `yaml:"min_f0" validate:"gt=0"`
	MaxF0            float64 `yaml:"max_f0" validate:"gtfield=MinF0"`
	VoicingThreshold float64 `yaml:"voicing_threshold" validate:"gte=0,lte=1"`
	SilenceDB        float64 `yaml:"silence_db" validate:"lte=0"`
	FrameSize        int     `yaml:"frame_size" validate:"gte=256"`
}

// Synth mirrors synth.Config.
type Synth struct {
	Mode           string  `yaml:"mode" validate:"oneof=wsola spectral vocoder"`
	ToleranceCents float64 `yaml:"tolerance_cents" validate:"gte=0,lte=1200"`
	CrossfadeMs    float64 `yaml:"crossfade_ms" validate:"gte=0,lte=100"`
	// Workers bounds concurrent rendering. Zero selects GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`
}

// Log selects the diagnostic logger.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration: +100 cents, 16-bit stereo,
// no dither.
func Default() Config {
	a := analysis.DefaultConfig()
	s := synth.DefaultConfig()
	return Config{
		ShiftCents: 100,
		Export:     Export{Bits: 16, Channels: 2, Dither: "none"},
		Analysis: Analysis{
			CtrlPntPs:        a.CtrlPntPs,
			MinF0:            a.MinF0,
			MaxF0:            a.MaxF0,
			VoicingThreshold: a.VoicingThreshold,
			SilenceDB:        a.SilenceDB,
			FrameSize:        a.FrameSize,
		},
		Synth: Synth{
			Mode:           s.Mode.String(),
			ToleranceCents: s.ToleranceCents,
			CrossfadeMs:    s.CrossfadeMs,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the package-level constraints they
// cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if err := c.AnalysisConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sc, err := c.SynthConfig()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// AnalysisConfig converts the analysis section.
func (c Config) AnalysisConfig() analysis.Config {
	a := c.Analysis
	return analysis.Config{
		CtrlPntPs:        a.CtrlPntPs,
		MinF0:            a.MinF0,
		MaxF0:            a.MaxF0,
		VoicingThreshold: a.VoicingThreshold,
		SilenceDB:        a.SilenceDB,
		FrameSize:        a.FrameSize,
	}
}

// SynthConfig converts the synth section.
func (c Config) SynthConfig() (synth.Config, error) {
	kind, err := pitch.ParseKind(c.Synth.Mode)
	if err != nil {
		return synth.Config{}, fmt.Errorf("config: %w", err)
	}
	return synth.Config{
		Mode:           kind,
		ToleranceCents: c.Synth.ToleranceCents,
		CrossfadeMs:    c.Synth.CrossfadeMs,
		Workers:        c.Synth.Workers,
	}, nil
}

// ProjectOptions returns the vslib options for a project logging to logger.
func (c Config) ProjectOptions(logger *slog.Logger) ([]vslib.Option, error) {
	sc, err := c.SynthConfig()
	if err != nil {
		return nil, err
	}
	return []vslib.Option{
		vslib.WithLogger(logger),
		vslib.WithAnalysis(c.AnalysisConfig()),
		vslib.WithSynth(sc),
	}, nil
}

// ExportOptions returns the vslib options for ExportWaveFile.
func (c Config) ExportOptions() ([]vslib.ExportOption, error) {
	t, err := dither.ParseType(c.Export.Dither)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := []vslib.ExportOption{vslib.WithDither(t)}
	if c.Export.NoiseShaping {
		opts = append(opts, vslib.WithNoiseShaping())
	}
	if c.Export.Seed != 0 {
		opts = append(opts, vslib.WithDitherSeed(c.Export.Seed))
	}
	return opts, nil
}
