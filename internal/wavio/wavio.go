// Package wavio reads and writes PCM wave files as normalized float channels.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	// 8-bit wave data is unsigned with a bias of 128.
	bias8 = 128
)

var (
	// ErrFormat reports a file that is not a supported PCM wave.
	ErrFormat = errors.New("wavio: unsupported format")
	// ErrEmpty reports a wave without sample frames.
	ErrEmpty = errors.New("wavio: no sample data")
)

// Wave is decoded audio. Samples are normalized so that full scale of the
// source bit depth maps to [-1, 1).
type Wave struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Len returns the number of sample frames.
func (w *Wave) Len() int {
	if w == nil || len(w.Channels) == 0 {
		return 0
	}
	return len(w.Channels[0])
}

// Read decodes the wave file at path.
func Read(path string) (*Wave, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Decode reads a PCM wave from r.
func Decode(r io.ReadSeeker) (*Wave, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrFormat)
	}
	if d.WavAudioFormat != formatPCM && d.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: audio format %#x", ErrFormat, d.WavAudioFormat)
	}

	bits := int(d.BitDepth)
	if !ValidBitDepth(bits) {
		return nil, fmt.Errorf("%w: bit depth %d", ErrFormat, bits)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: missing format", ErrFormat)
	}

	chans := buf.Format.NumChannels
	frames := len(buf.Data) / chans
	if frames == 0 {
		return nil, ErrEmpty
	}

	w := &Wave{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   bits,
		Channels:   make([][]float64, chans),
	}
	for c := range w.Channels {
		w.Channels[c] = make([]float64, frames)
	}

	scale := 1 / fullScale(bits)
	for i := range frames {
		for c := range chans {
			v := buf.Data[i*chans+c]
			if bits == 8 {
				v -= bias8
			}
			w.Channels[c][i] = float64(v) * scale
		}
	}
	return w, nil
}

// Write encodes interleaved signed PCM to a new wave file at path. On failure
// the partial file is removed.
func Write(path string, sampleRate, bits, channels int, data []int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return Encode(f, sampleRate, bits, channels, data)
}

// Encode writes interleaved signed PCM as a wave stream. Samples are signed
// integers in the range of bits; 8-bit data is biased on output.
func Encode(ws io.WriteSeeker, sampleRate, bits, channels int, data []int) error {
	switch {
	case !ValidBitDepth(bits):
		return fmt.Errorf("%w: bit depth %d", ErrFormat, bits)
	case channels < 1:
		return fmt.Errorf("%w: channel count %d", ErrFormat, channels)
	case sampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrFormat, sampleRate)
	case len(data)%channels != 0:
		return fmt.Errorf("wavio: %d samples do not fill %d channels", len(data), channels)
	}

	out := data
	if bits == 8 {
		out = make([]int, len(data))
		for i, v := range data {
			out[i] = v + bias8
		}
	}

	enc := wav.NewEncoder(ws, sampleRate, bits, channels, formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           out,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize header: %w", err)
	}
	return nil
}

// ValidBitDepth reports whether bits is a supported PCM depth.
func ValidBitDepth(bits int) bool {
	switch bits {
	case 8, 16, 24, 32:
		return true
	default:
		return false
	}
}

func fullScale(bits int) float64 {
	return math.Exp2(float64(bits - 1))
}
