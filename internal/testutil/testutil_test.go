package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSineStartsAtZero(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestHarmonicTonePeakBounded(t *testing.T) {
	x := HarmonicTone(200, 48000, 0.8, 6, 4800)
	for i, v := range x {
		if math.Abs(v) > 0.8+1e-12 {
			t.Fatalf("x[%d] = %v exceeds amplitude", i, v)
		}
	}
}

func TestZeroCrossingFrequency(t *testing.T) {
	x := DeterministicSine(441, 44100, 0.5, 44100)
	got := ZeroCrossingFrequency(x, 44100)
	if math.Abs(got-441) > 0.01 {
		t.Fatalf("ZeroCrossingFrequency = %v, want 441", got)
	}
}

func TestRMSOfSine(t *testing.T) {
	x := DeterministicSine(100, 48000, 1, 48000)
	if got := RMS(x); math.Abs(got-math.Sqrt2/2) > 1e-6 {
		t.Fatalf("RMS = %v, want %v", got, math.Sqrt2/2)
	}
}

func TestCents(t *testing.T) {
	if got := Cents(440, 880); math.Abs(got-1200) > 1e-9 {
		t.Fatalf("Cents(440, 880) = %v, want 1200", got)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestConcat(t *testing.T) {
	got := Concat([]float64{1}, nil, []float64{2, 3})
	RequireSliceNearlyEqual(t, got, []float64{1, 2, 3}, 0)
}
