package synth

import (
	"math"
	"testing"
)

func TestEnvelope(t *testing.T) {
	env := envelope([]float64{1, 3, 3}, 30, 1000, 100)

	tests := []struct {
		i    int
		want float64
	}{
		{i: 0, want: 1},
		{i: 5, want: 2},
		{i: 10, want: 3},
		{i: 15, want: 3},
		{i: 29, want: 3},
	}
	for _, tt := range tests {
		if math.Abs(env[tt.i]-tt.want) > 1e-12 {
			t.Fatalf("env[%d] = %v, want %v", tt.i, env[tt.i], tt.want)
		}
	}

	if out := envelope(nil, 4, 1000, 100); len(out) != 4 || out[0] != 0 {
		t.Fatalf("empty envelope = %v", out)
	}
}

func TestEnvelopeHoldsEqualValuesExactly(t *testing.T) {
	env := envelope([]float64{0.1, 0.1, 0.1}, 33, 44100, 1337)
	for i, v := range env {
		if v != 0.1 {
			t.Fatalf("env[%d] = %v", i, v)
		}
	}
}

func TestPanMonoLaw(t *testing.T) {
	src := []float64{1, 1, 1, 1}

	out := panMono(src, []float64{0}, 1000, 100)
	if out[0][0] != 1 || out[1][0] != 1 {
		t.Fatalf("center = %v/%v, want unity", out[0][0], out[1][0])
	}

	out = panMono(src, []float64{-1}, 1000, 100)
	if math.Abs(out[0][0]-math.Sqrt2) > 1e-12 || math.Abs(out[1][0]) > 1e-12 {
		t.Fatalf("hard left = %v/%v", out[0][0], out[1][0])
	}

	out = panMono(src, []float64{0.3}, 1000, 100)
	power := out[0][0]*out[0][0] + out[1][0]*out[1][0]
	if math.Abs(power-2) > 1e-12 {
		t.Fatalf("power at 0.3 = %v, want 2", power)
	}
}

func TestBalance(t *testing.T) {
	ch := [][]float64{{1, 1}, {1, 1}}
	balance(ch, []float64{-0.25}, 1000, 100)
	if ch[0][0] != 1 || ch[1][0] != 0.75 {
		t.Fatalf("balance left = %v", ch)
	}

	ch = [][]float64{{1, 1}, {1, 1}}
	balance(ch, []float64{1}, 1000, 100)
	if ch[0][1] != 0 || ch[1][1] != 1 {
		t.Fatalf("balance hard right = %v", ch)
	}
}
