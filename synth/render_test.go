package synth

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vshift/dsp/pitch"
	"github.com/cwbudde/algo-vshift/internal/testutil"
)

func points(n int, p Point) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func newRenderer(t *testing.T, mode pitch.Kind) *Renderer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Mode = mode
	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRenderUneditedIsExactCopy(t *testing.T) {
	const rate = 44100
	left := testutil.HarmonicTone(200, rate, 0.5, 5, rate/2)
	right := testutil.DeterministicNoise(9, 0.3, rate/2)
	unedited := Point{Gain: 1}

	for _, mode := range []pitch.Kind{pitch.KindWSOLA, pitch.KindVocoder} {
		r := newRenderer(t, mode)

		mono, err := r.Render(context.Background(), Job{
			Channels: [][]float64{left}, SampleRate: rate, CtrlPntPs: 100,
			Points: points(50, unedited),
		})
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireSliceNearlyEqual(t, mono[0], left, 0)

		stereo, err := r.Render(context.Background(), Job{
			Channels: [][]float64{left, right}, SampleRate: rate, CtrlPntPs: 100,
			Points: points(50, unedited),
		})
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireSliceNearlyEqual(t, stereo[0], left, 0)
		testutil.RequireSliceNearlyEqual(t, stereo[1], right, 0)

		spread, err := r.Render(context.Background(), Job{
			Channels: [][]float64{left}, SampleRate: rate, CtrlPntPs: 100,
			Points: points(50, unedited), OutChannels: 2,
		})
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireSliceNearlyEqual(t, spread[0], left, 0)
		testutil.RequireSliceNearlyEqual(t, spread[1], left, 0)
	}
}

func TestRenderShiftsPitch(t *testing.T) {
	const rate = 44100
	src := testutil.DeterministicSine(220, rate, 0.5, rate)

	for _, mode := range []pitch.Kind{pitch.KindWSOLA, pitch.KindVocoder} {
		t.Run(mode.String(), func(t *testing.T) {
			r := newRenderer(t, mode)
			out, err := r.Render(context.Background(), Job{
				Channels: [][]float64{src}, SampleRate: rate, CtrlPntPs: 100,
				Points: points(100, Point{ShiftCents: 100, Gain: 1}),
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != 1 || len(out[0]) != len(src) {
				t.Fatalf("output shape = %d x %d", len(out), len(out[0]))
			}
			testutil.RequireFinite(t, out[0])

			got := testutil.ZeroCrossingFrequency(out[0][rate/4:3*rate/4], rate)
			if d := math.Abs(testutil.Cents(220, got) - 100); d > 10 {
				t.Fatalf("shift = %.1f cents, want 100", testutil.Cents(220, got))
			}
		})
	}
}

func TestRenderPartialEditKeepsUneditedRegion(t *testing.T) {
	const rate = 44100
	src := testutil.HarmonicTone(180, rate, 0.5, 4, rate)

	pts := points(100, Point{Gain: 1})
	for i := 50; i < 100; i++ {
		pts[i].ShiftCents = 700
	}

	r := newRenderer(t, pitch.KindWSOLA)
	out, err := r.Render(context.Background(), Job{
		Channels: [][]float64{src}, SampleRate: rate, CtrlPntPs: 100, Points: pts,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The boundary lies at sample 21830 and the join spans 110 samples
	// either side of it.
	const edge = 21600
	testutil.RequireSliceNearlyEqual(t, out[0][:edge], src[:edge], 0)

	got := testutil.ZeroCrossingFrequency(out[0][3*rate/5:9*rate/10], rate)
	if d := math.Abs(testutil.Cents(180, got) - 700); d > 10 {
		t.Fatalf("edited region shift = %.1f cents", testutil.Cents(180, got))
	}
}

func TestRenderGain(t *testing.T) {
	src := testutil.DeterministicSine(300, 16000, 0.8, 1600)

	r := newRenderer(t, pitch.KindWSOLA)
	out, err := r.Render(context.Background(), Job{
		Channels: [][]float64{src}, SampleRate: 16000, CtrlPntPs: 100,
		Points: points(10, Point{Gain: 0.5}),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range src {
		if out[0][i] != 0.5*src[i] {
			t.Fatalf("sample %d = %v, want %v", i, out[0][i], 0.5*src[i])
		}
	}
}

func TestRenderDownmix(t *testing.T) {
	r := newRenderer(t, pitch.KindWSOLA)
	out, err := r.Render(context.Background(), Job{
		Channels:   [][]float64{{1, 0.5}, {0, 0.5}},
		SampleRate: 8000, CtrlPntPs: 100,
		Points:      points(1, Point{Gain: 1}),
		OutChannels: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out[0], []float64{0.5, 0.5}, 0)
}

func TestRenderIsDeterministicAcrossWorkers(t *testing.T) {
	const rate = 22050
	src := testutil.HarmonicTone(150, rate, 0.5, 3, rate)
	pts := points(100, Point{Gain: 1})
	for i := range pts {
		pts[i].ShiftCents = float64((i / 10) * 50)
	}

	render := func(workers int) []float64 {
		cfg := DefaultConfig()
		cfg.Workers = workers
		r, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		out, err := r.Render(context.Background(), Job{
			Channels: [][]float64{src}, SampleRate: rate, CtrlPntPs: 100, Points: pts,
		})
		if err != nil {
			t.Fatal(err)
		}
		return out[0]
	}

	testutil.RequireSliceNearlyEqual(t, render(4), render(1), 0)
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRenderer(t, pitch.KindWSOLA)
	_, err := r.Render(ctx, Job{
		Channels:   [][]float64{testutil.DeterministicSine(440, 8000, 0.5, 8000)},
		SampleRate: 8000, CtrlPntPs: 100,
		Points: points(100, Point{ShiftCents: 200, Gain: 1}),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRenderRejectsInvalidJobs(t *testing.T) {
	r := newRenderer(t, pitch.KindWSOLA)
	good := []float64{0, 0, 0}

	tests := []struct {
		name string
		job  Job
	}{
		{name: "no channels", job: Job{SampleRate: 8000, CtrlPntPs: 100}},
		{name: "three channels", job: Job{Channels: [][]float64{good, good, good}, SampleRate: 8000, CtrlPntPs: 100}},
		{name: "ragged", job: Job{Channels: [][]float64{good, {0}}, SampleRate: 8000, CtrlPntPs: 100}},
		{name: "zero rate", job: Job{Channels: [][]float64{good}, CtrlPntPs: 100}},
		{name: "zero point rate", job: Job{Channels: [][]float64{good}, SampleRate: 8000}},
		{name: "bad out channels", job: Job{Channels: [][]float64{good}, SampleRate: 8000, CtrlPntPs: 100, OutChannels: 3}},
		{name: "negative gain", job: Job{Channels: [][]float64{good}, SampleRate: 8000, CtrlPntPs: 100, Points: []Point{{Gain: -1}}}},
		{name: "nan shift", job: Job{Channels: [][]float64{good}, SampleRate: 8000, CtrlPntPs: 100, Points: []Point{{ShiftCents: math.NaN()}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Render(context.Background(), tt.job); !errors.Is(err, ErrInvalidJob) {
				t.Fatalf("err = %v, want ErrInvalidJob", err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = pitch.Kind(7) }, wantErr: true},
		{name: "negative tolerance", mutate: func(c *Config) { c.ToleranceCents = -1 }, wantErr: true},
		{name: "long crossfade", mutate: func(c *Config) { c.CrossfadeMs = 500 }, wantErr: true},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg); (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
