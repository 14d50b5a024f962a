package vslib

import (
	"bytes"
	"math"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Summary is a YAML-friendly snapshot of a project.
type Summary struct {
	ID           string         `yaml:"id,omitempty"`
	SampleRate   int            `yaml:"sample_rate"`
	MasterVolume float64        `yaml:"master_volume"`
	MixSamples   int            `yaml:"mix_samples"`
	Tracks       []TrackSummary `yaml:"tracks"`
	Items        []ItemSummary  `yaml:"items"`
}

// TrackSummary describes one track.
type TrackSummary struct {
	Number int     `yaml:"number"`
	Volume float64 `yaml:"volume"`
	Pan    float64 `yaml:"pan"`
	Mute   bool    `yaml:"mute,omitempty"`
	Solo   bool    `yaml:"solo,omitempty"`
}

// ItemSummary describes one item and its control points.
type ItemSummary struct {
	Number     int     `yaml:"number"`
	File       string  `yaml:"file"`
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	Samples    int     `yaml:"samples"`
	Seconds    float64 `yaml:"seconds"`
	SynthMode  string  `yaml:"synth_mode"`
	Track      int     `yaml:"track"`
	Offset     int     `yaml:"offset"`
	CtrlPntPs  int     `yaml:"ctrl_pnt_ps"`
	CtrlPntNum int     `yaml:"ctrl_pnt_num"`
	Voiced     int     `yaml:"voiced"`
	Edited     int     `yaml:"edited"`
	// PitchMin, PitchMax and PitchMedian are over voiced points, in cents.
	PitchMin    int `yaml:"pitch_min,omitempty"`
	PitchMax    int `yaml:"pitch_max,omitempty"`
	PitchMedian int `yaml:"pitch_median,omitempty"`
}

// Summary returns a snapshot of the project for display.
func (p *Project) Summary() (Summary, error) {
	total, err := p.MixSample()
	if err != nil {
		return Summary{}, opErr("Summary", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return Summary{}, opErr("Summary", ErrClosed)
	}

	s := Summary{
		ID:           p.id.String(),
		SampleRate:   p.info.SampFreq,
		MasterVolume: p.info.MasterVolume,
		MixSamples:   total,
		Tracks:       []TrackSummary{},
		Items:        []ItemSummary{},
	}
	for n := range maxTracks {
		if t, ok := p.tracks[n]; ok {
			s.Tracks = append(s.Tracks, TrackSummary{Number: n, Volume: t.Volume, Pan: t.Pan, Mute: t.Mute, Solo: t.Solo})
		}
	}
	for _, n := range p.itemNumbers() {
		s.Items = append(s.Items, summarizeItem(n, p.items[n]))
	}
	return s, nil
}

func summarizeItem(n int, it *item) ItemSummary {
	info := it.info
	is := ItemSummary{
		Number:     n,
		File:       filepath.Base(info.FileName),
		SampleRate: info.SampFreq,
		Channels:   info.Channel,
		Samples:    info.SampleOrg,
		Seconds:    math.Round(float64(info.SampleOrg)/float64(info.SampFreq)*1000) / 1000,
		SynthMode:  info.SynthMode.String(),
		Track:      info.TrackNum,
		Offset:     info.Offset,
		CtrlPntPs:  info.CtrlPntPs,
		CtrlPntNum: info.CtrlPntNum,
	}

	var pitches []int
	for _, cp := range it.points {
		if cp.PitFlgOrg == 1 {
			is.Voiced++
			pitches = append(pitches, cp.PitAna)
		}
		if edited(cp) {
			is.Edited++
		}
	}
	if len(pitches) > 0 {
		slices.Sort(pitches)
		is.PitchMin = pitches[0]
		is.PitchMax = pitches[len(pitches)-1]
		is.PitchMedian = pitches[len(pitches)/2]
	}
	return is
}

// edited reports whether any editable field differs from its analysis
// default.
func edited(cp CtrlPnt) bool {
	return cp.PitEdit != cp.PitOrg || cp.PitFlgEdit != cp.PitFlgOrg ||
		cp.DynEdit != cp.DynOrg || cp.Volume != 1 || cp.Pan != 0 ||
		cp.SpcDyn != 0 || cp.Formant != 0 || cp.Breathiness != 0 ||
		cp.Eq1 != 0 || cp.Eq2 != 0
}

// YAML renders the summary with two-space indentation.
func (s Summary) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
