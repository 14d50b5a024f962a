package vslib

import (
	"fmt"

	"github.com/cwbudde/algo-vshift/dsp/pitch"
)

// SynthMode selects how an item's pitch edits are rendered.
type SynthMode int

const (
	// SynthWSOLA renders in the time domain.
	SynthWSOLA SynthMode = iota
	// SynthSpectral renders with a phase vocoder.
	SynthSpectral
)

// String returns the mode name used in configuration files.
func (m SynthMode) String() string {
	return m.kind().String()
}

// ParseSynthMode maps "wsola" or "spectral" to a SynthMode.
func ParseSynthMode(s string) (SynthMode, error) {
	k, err := pitch.ParseKind(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	if k == pitch.KindVocoder {
		return SynthSpectral, nil
	}
	return SynthWSOLA, nil
}

func (m SynthMode) valid() bool {
	return m == SynthWSOLA || m == SynthSpectral
}

func (m SynthMode) kind() pitch.Kind {
	if m == SynthSpectral {
		return pitch.KindVocoder
	}
	return pitch.KindWSOLA
}

func modeOf(k pitch.Kind) SynthMode {
	if k == pitch.KindVocoder {
		return SynthSpectral
	}
	return SynthWSOLA
}

// ProjectInfo holds project-wide settings.
type ProjectInfo struct {
	// MasterVolume is a linear gain in [0, 4].
	MasterVolume float64
	// SampFreq is the mix and export sample rate in Hz.
	SampFreq int
}

// ItemInfo describes an item. Only SynthMode, TrackNum and Offset can be
// changed through SetItemInfo.
type ItemInfo struct {
	FileName   string
	SampFreq   int
	Channel    int
	SampleOrg  int
	SampleEdit int
	CtrlPntPs  int
	CtrlPntNum int
	SynthMode  SynthMode
	TrackNum   int
	// Offset is the item start in project samples.
	Offset int
}

// CtrlPnt is one control point of an item.
//
// DynOrg, PitAna, PitOrg and PitFlgOrg are analysis results and read-only.
// PitAna is the detected pitch and 0 where the point is unvoiced; PitOrg
// interpolates across unvoiced gaps. A flag of 1 marks a voiced point.
type CtrlPnt struct {
	DynOrg  float64
	DynEdit float64
	Volume  float64
	Pan     float64
	SpcDyn  float64

	PitAna      int
	PitOrg      int
	PitEdit     int
	Formant     int
	PitFlgOrg   int
	PitFlgEdit  int
	Breathiness int
	Eq1         int
	Eq2         int
}

// TrackInfo holds per-track mix settings.
type TrackInfo struct {
	Volume float64
	Pan    float64
	Mute   bool
	Solo   bool
}

const (
	minSampFreq  = 8000
	maxSampFreq  = 192000
	maxVolume    = 4.0
	maxPitch     = 12700
	maxFormant   = 2400
	maxBreath    = 10000
	maxEq        = 10000
	maxTracks    = 64
	defaultRate  = 44100
	dynFloor     = 1e-9
	defaultTrack = 0

	// maxMixFrames is the longest mix a RIFF data chunk can address.
	maxMixFrames = 1<<31 - 1
)

func defaultTrackInfo() TrackInfo {
	return TrackInfo{Volume: 1}
}
