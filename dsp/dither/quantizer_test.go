package dither

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vshift/internal/testutil"
)

func TestNewQuantizerOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults"},
		{name: "24-bit tpdf shaped", opts: []Option{WithBitDepth(24), WithType(Triangular), WithNoiseShaping()}},
		{name: "bit depth too low", opts: []Option{WithBitDepth(4)}, wantErr: true},
		{name: "bit depth too high", opts: []Option{WithBitDepth(33)}, wantErr: true},
		{name: "invalid type", opts: []Option{WithType(Type(9))}, wantErr: true},
		{name: "negative amplitude", opts: []Option{WithAmplitude(-1)}, wantErr: true},
		{name: "nil option", opts: []Option{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuantizer(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewQuantizer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuantizeIntegerRoundTrip(t *testing.T) {
	for _, bits := range []int{8, 16, 24, 32} {
		q, err := NewQuantizer(WithBitDepth(bits))
		if err != nil {
			t.Fatal(err)
		}

		full := math.Exp2(float64(bits - 1))
		for _, v := range []int{-int(full), -12345 % int(full), -1, 0, 1, 77, int(full) - 1} {
			if got := q.Quantize(float64(v) / full); got != v {
				t.Fatalf("%d-bit: Quantize(%d/full) = %d", bits, v, got)
			}
		}
	}
}

func TestQuantizeClips(t *testing.T) {
	q, err := NewQuantizer()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in   float64
		want int
	}{
		{in: 1, want: 32767},
		{in: 2, want: 32767},
		{in: -1, want: -32768},
		{in: -5, want: -32768},
		{in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		if got := q.Quantize(tt.in); got != tt.want {
			t.Fatalf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTriangularDitherIsSeededAndBounded(t *testing.T) {
	in := testutil.DeterministicSine(1000, 48000, 0.25, 2048)

	run := func() []int {
		q, err := NewQuantizer(WithType(Triangular), WithSeed(7))
		if err != nil {
			t.Fatal(err)
		}
		out := make([]int, len(in))
		q.QuantizeBlock(out, in)
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded dither differs at %d", i)
		}
		ideal := in[i] * 32768
		if math.Abs(float64(a[i])-ideal) > 1.5+1e-9 {
			t.Fatalf("sample %d: %d too far from %v", i, a[i], ideal)
		}
	}
}

func TestNoiseShapingKeepsSignal(t *testing.T) {
	in := testutil.DeterministicSine(440, 44100, 0.5, 4410)

	q, err := NewQuantizer(WithType(Triangular), WithNoiseShaping(), WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}

	out := make([]int, len(in))
	q.QuantizeBlock(out, in)

	back := make([]float64, len(out))
	for i, v := range out {
		back[i] = float64(v) / 32768
	}

	errRMS := 0.0
	for i := range in {
		d := back[i] - in[i]
		errRMS += d * d
	}
	errRMS = math.Sqrt(errRMS / float64(len(in)))

	if errRMS > 1e-3 {
		t.Fatalf("shaped error RMS = %g, want < 1e-3", errRMS)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "", want: None},
		{in: "None", want: None},
		{in: "tpdf", want: Triangular},
		{in: "triangular", want: Triangular},
		{in: "rectangular", want: Rectangular},
		{in: "gauss", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseType(%q) error = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFIRShaperPassThrough(t *testing.T) {
	s := NewFIRShaper(nil)
	if got := s.Shape(3.5); got != 3.5 {
		t.Fatalf("Shape = %v, want 3.5", got)
	}
	s.RecordError(1)
	s.Reset()
}
