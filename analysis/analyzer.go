package analysis

import (
	"context"
	"fmt"
	"math"
)

// Frame is the analysis result at one control point.
type Frame struct {
	// Hz is the estimated fundamental, or 0 when no period was found.
	Hz float64
	// Clarity is the NSDF value at the chosen period, in [-1, 1].
	Clarity float64
	// RMS is the signal level around the control point.
	RMS float64
	// Voiced reports whether Hz is trustworthy.
	Voiced bool
}

// Analyzer runs control-point analysis. It is safe for concurrent use; each
// Analyze call allocates its own scratch buffers.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// FrameCount returns the number of control points for length samples at
// sampleRate: ceil(length*CtrlPntPs/sampleRate).
func FrameCount(length, sampleRate, ctrlPntPs int) int {
	if length <= 0 || sampleRate <= 0 || ctrlPntPs <= 0 {
		return 0
	}
	num := int64(length) * int64(ctrlPntPs)
	return int((num + int64(sampleRate) - 1) / int64(sampleRate))
}

// Analyze returns one Frame per control point of samples.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) ([]Frame, error) {
	return a.AnalyzeContext(context.Background(), samples, sampleRate)
}

// AnalyzeContext is Analyze with cancellation between frames.
func (a *Analyzer) AnalyzeContext(ctx context.Context, samples []float64, sampleRate int) ([]Frame, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis sample rate must be positive: %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	size := a.frameSize(sampleRate)
	tracker, err := newNSDF(size)
	if err != nil {
		return nil, err
	}

	minLag := int(math.Floor(float64(sampleRate) / a.cfg.MaxF0))
	maxLag := min(size/2, int(math.Ceil(float64(sampleRate)/a.cfg.MinF0)))
	hop := float64(sampleRate) / float64(a.cfg.CtrlPntPs)
	rmsHalf := max(1, int(math.Round(hop)))

	count := FrameCount(len(samples), sampleRate, a.cfg.CtrlPntPs)
	frames := make([]Frame, count)
	buf := make([]float64, size)

	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		center := int(int64(i) * int64(sampleRate) / int64(a.cfg.CtrlPntPs))
		fill(buf, samples, center-size/2)

		fr := Frame{RMS: rms(samples, center-rmsHalf, center+rmsHalf)}

		values, err := tracker.compute(buf)
		if err != nil {
			return nil, err
		}
		if lag, clarity, ok := pickPeak(values, maxLag); ok && lag > 0 {
			fr.Hz = float64(sampleRate) / lag
			fr.Clarity = clarity
			fr.Voiced = clarity >= a.cfg.VoicingThreshold &&
				lag >= float64(minLag) &&
				fr.Hz >= a.cfg.MinF0 && fr.Hz <= a.cfg.MaxF0 &&
				levelDB(fr.RMS) >= a.cfg.SilenceDB
		}
		frames[i] = fr
	}
	return frames, nil
}

// frameSize returns the configured frame size, doubled until it spans two
// periods of MinF0 at sampleRate.
func (a *Analyzer) frameSize(sampleRate int) int {
	need := 2 * int(math.Ceil(float64(sampleRate)/a.cfg.MinF0))
	size := a.cfg.FrameSize
	for size < need {
		size *= 2
	}
	return size
}

// FillUnvoiced returns a copy of cents in which unvoiced runs are replaced by
// a linear interpolation between the surrounding voiced values. Leading and
// trailing runs hold the nearest voiced value. Without any voiced entry the
// input is returned unchanged.
func FillUnvoiced(cents []int, voiced []bool) []int {
	out := append([]int(nil), cents...)
	if len(voiced) < len(cents) {
		return out
	}

	prev := -1
	for i := range out {
		if !voiced[i] {
			continue
		}
		switch {
		case prev < 0:
			for j := range i {
				out[j] = out[i]
			}
		case i-prev > 1:
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				t := float64(j-prev) / span
				out[j] = int(math.Round(float64(out[prev])*(1-t) + float64(out[i])*t))
			}
		}
		prev = i
	}

	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = out[prev]
		}
	}
	return out
}

// Downmix averages channels into one mono signal. Channels shorter than the
// first contribute zeros.
func Downmix(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	if len(channels) == 1 {
		return append([]float64(nil), channels[0]...)
	}
	out := make([]float64, len(channels[0]))
	scale := 1 / float64(len(channels))
	for _, ch := range channels {
		for i := range min(len(ch), len(out)) {
			out[i] += ch[i] * scale
		}
	}
	return out
}

func fill(dst, src []float64, start int) {
	for i := range dst {
		j := start + i
		if j < 0 || j >= len(src) {
			dst[i] = 0
			continue
		}
		dst[i] = src[j]
	}
}

func rms(x []float64, from, to int) float64 {
	from = max(0, from)
	to = min(len(x), to)
	if to <= from {
		return 0
	}
	sum := 0.0
	for _, v := range x[from:to] {
		sum += v * v
	}
	return math.Sqrt(sum / float64(to-from))
}

func levelDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
