package wavio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bits     int
		channels int
		data     []int
	}{
		{name: "8-bit mono", bits: 8, channels: 1, data: []int{-128, -1, 0, 1, 127}},
		{name: "16-bit stereo", bits: 16, channels: 2, data: []int{-32768, 32767, 0, -1, 1000, -1000}},
		{name: "24-bit mono", bits: 24, channels: 1, data: []int{-8388608, 8388607, 12345, -54321}},
		{name: "32-bit stereo", bits: 32, channels: 2, data: []int{-2147483648, 2147483647, 7, -7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rt.wav")
			if err := Write(path, 22050, tt.bits, tt.channels, tt.data); err != nil {
				t.Fatal(err)
			}

			w, err := Read(path)
			if err != nil {
				t.Fatal(err)
			}
			if w.SampleRate != 22050 || w.BitDepth != tt.bits || len(w.Channels) != tt.channels {
				t.Fatalf("header = %d Hz, %d bits, %d channels", w.SampleRate, w.BitDepth, len(w.Channels))
			}
			if w.Len() != len(tt.data)/tt.channels {
				t.Fatalf("Len() = %d", w.Len())
			}

			full := fullScale(tt.bits)
			for i, want := range tt.data {
				got := w.Channels[i%tt.channels][i/tt.channels] * full
				if got != float64(want) {
					t.Fatalf("sample %d = %v, want %d", i, got, want)
				}
			}
		})
	}
}

func TestNormalization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.wav")
	if err := Write(path, 8000, 16, 1, []int{-32768, 16384}); err != nil {
		t.Fatal(err)
	}
	w, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.Channels[0][0] != -1 || w.Channels[0][1] != 0.5 {
		t.Fatalf("samples = %v", w.Channels[0])
	}
}

func TestEncodeRejectsBadParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")

	tests := []struct {
		name                 string
		rate, bits, channels int
		data                 []int
	}{
		{name: "bit depth", rate: 8000, bits: 12, channels: 1},
		{name: "channels", rate: 8000, bits: 16, channels: 0},
		{name: "rate", rate: 0, bits: 16, channels: 1},
		{name: "ragged", rate: 8000, bits: 16, channels: 2, data: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Write(path, tt.rate, tt.bits, tt.channels, tt.data); err == nil {
				t.Fatal("expected error")
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatalf("partial file left behind: %v", err)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wave file at all")))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestDecodeEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	if err := Write(path, 8000, 16, 1, nil); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := Decode(f); !errors.Is(err, ErrEmpty) && !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrEmpty or ErrFormat", err)
	}
}

func TestValidBitDepth(t *testing.T) {
	for bits, want := range map[int]bool{8: true, 16: true, 24: true, 32: true, 0: false, 12: false, 64: false} {
		if got := ValidBitDepth(bits); got != want {
			t.Fatalf("ValidBitDepth(%d) = %v", bits, got)
		}
	}
}
