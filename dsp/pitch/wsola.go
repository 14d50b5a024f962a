package pitch

import (
	"fmt"
	"math"
)

const (
	// Voice-tuned defaults. A shorter sequence than music presets keeps
	// syllable onsets tight; the search radius spans one period at 50 Hz.
	defaultSequenceMs = 40.0
	defaultOverlapMs  = 10.0
	defaultSearchMs   = 20.0

	minSequenceMs = 20.0
	maxSequenceMs = 120.0
	minOverlapMs  = 4.0
	maxOverlapMs  = 60.0
	minSearchMs   = 2.0
	maxSearchMs   = 40.0
)

// WSOLAOption configures a WSOLA shifter.
type WSOLAOption func(*WSOLA) error

// WithSequence sets the splice sequence length in milliseconds.
func WithSequence(ms float64) WSOLAOption {
	return func(w *WSOLA) error {
		if !inRange(ms, minSequenceMs, maxSequenceMs) {
			return fmt.Errorf("wsola sequence must be in [%g, %g] ms: %g", minSequenceMs, maxSequenceMs, ms)
		}
		w.sequenceMs = ms
		return nil
	}
}

// WithOverlap sets the crossfade length in milliseconds.
func WithOverlap(ms float64) WSOLAOption {
	return func(w *WSOLA) error {
		if !inRange(ms, minOverlapMs, maxOverlapMs) {
			return fmt.Errorf("wsola overlap must be in [%g, %g] ms: %g", minOverlapMs, maxOverlapMs, ms)
		}
		w.overlapMs = ms
		return nil
	}
}

// WithSearch sets the similarity search radius in milliseconds.
func WithSearch(ms float64) WSOLAOption {
	return func(w *WSOLA) error {
		if !inRange(ms, minSearchMs, maxSearchMs) {
			return fmt.Errorf("wsola search must be in [%g, %g] ms: %g", minSearchMs, maxSearchMs, ms)
		}
		w.searchMs = ms
		return nil
	}
}

// WSOLA shifts pitch by stretching the input in time with waveform-similarity
// overlap-add and then resampling it back to the original length.
//
//   - ratio 1.0 leaves the input unchanged
//   - ratio 2.0 shifts one octave up
//   - ratio 0.5 shifts one octave down
type WSOLA struct {
	sampleRate float64
	ratio      float64

	sequenceMs float64
	overlapMs  float64
	searchMs   float64

	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

// NewWSOLA constructs a WSOLA shifter at unity ratio.
func NewWSOLA(sampleRate float64, opts ...WSOLAOption) (*WSOLA, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("wsola sample rate must be positive and finite: %f", sampleRate)
	}

	w := &WSOLA{
		sampleRate: sampleRate,
		ratio:      1,
		sequenceMs: defaultSequenceMs,
		overlapMs:  defaultOverlapMs,
		searchMs:   defaultSearchMs,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	if err := w.rebuild(); err != nil {
		return nil, err
	}
	return w, nil
}

// SampleRate returns the sample rate in Hz.
func (w *WSOLA) SampleRate() float64 { return w.sampleRate }

// Ratio returns the pitch ratio.
func (w *WSOLA) Ratio() float64 { return w.ratio }

// Context returns one splice plus the search radius, in samples.
func (w *WSOLA) Context() int { return w.sequenceLen + w.searchLen }

// SetRatio updates the pitch ratio.
func (w *WSOLA) SetRatio(ratio float64) error {
	if err := validateRatio(ratio); err != nil {
		return err
	}
	w.ratio = ratio
	return nil
}

// SetCents updates the pitch shift in cents.
func (w *WSOLA) SetCents(cents float64) error {
	ratio, err := ratioFromCents(cents)
	if err != nil {
		return err
	}
	w.ratio = ratio
	return nil
}

// Reset is a no-op; WSOLA keeps no state between Process calls.
func (w *WSOLA) Reset() {}

// Process returns a pitch-shifted copy of input with equal length.
func (w *WSOLA) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	if math.Abs(w.ratio-1) <= identityEps {
		return copyOf(input)
	}

	return stretchTo(w.stretch(input), len(input))
}

func (w *WSOLA) rebuild() error {
	if w.overlapMs >= w.sequenceMs {
		return fmt.Errorf("wsola overlap must be smaller than sequence: overlap=%g sequence=%g",
			w.overlapMs, w.sequenceMs)
	}

	w.sequenceLen = max(32, int(math.Round(w.sequenceMs*0.001*w.sampleRate)))
	w.overlapLen = max(8, int(math.Round(w.overlapMs*0.001*w.sampleRate)))
	if w.overlapLen >= w.sequenceLen {
		return fmt.Errorf("wsola overlap too large for sequence: overlap=%d sequence=%d",
			w.overlapLen, w.sequenceLen)
	}

	w.stepOut = w.sequenceLen - w.overlapLen
	if w.stepOut < 4 {
		return fmt.Errorf("wsola output hop too small: %d", w.stepOut)
	}

	w.searchLen = max(1, int(math.Round(w.searchMs*0.001*w.sampleRate)))

	w.fadeIn = make([]float64, w.overlapLen)
	w.fadeOut = make([]float64, w.overlapLen)
	for i := range w.overlapLen {
		t := float64(i) / float64(w.overlapLen-1)
		in := 0.5 - 0.5*math.Cos(math.Pi*t)
		w.fadeIn[i] = in
		w.fadeOut[i] = 1 - in
	}
	return nil
}

// stretch time-scales input by ratio while keeping its pitch.
func (w *WSOLA) stretch(input []float64) []float64 {
	targetLen := max(1, int(math.Round(float64(len(input))*w.ratio)))
	inStep := math.Max(1, float64(w.stepOut)/w.ratio)

	out := make([]float64, (targetLen/w.stepOut+4)*w.stepOut+w.sequenceLen+1)
	for i := range w.sequenceLen {
		out[i] = zeroAt(input, i)
	}

	outLen := w.sequenceLen
	prevStart := 0
	nominal := inStep
	ref := make([]float64, w.overlapLen)

	for outLen < targetLen+w.sequenceLen {
		// The natural continuation of the previous splice is the template
		// the next splice has to match.
		refStart := prevStart + w.stepOut
		for i := range ref {
			ref[i] = zeroAt(input, refStart+i)
		}

		cand := w.bestOverlap(ref, input, int(math.Round(nominal)))

		outStart := outLen - w.overlapLen
		for i := range w.overlapLen {
			out[outStart+i] = out[outStart+i]*w.fadeOut[i] + zeroAt(input, cand+i)*w.fadeIn[i]
		}
		for i := w.overlapLen; i < w.sequenceLen; i++ {
			out[outStart+i] = zeroAt(input, cand+i)
		}

		outLen = outStart + w.sequenceLen
		prevStart = cand
		nominal += inStep

		if prevStart > len(input)+w.sequenceLen && outLen >= targetLen {
			break
		}
	}

	if targetLen <= len(out) {
		return out[:targetLen]
	}
	padded := make([]float64, targetLen)
	copy(padded, out)
	return padded
}

// bestOverlap returns the candidate start around predicted whose first
// overlapLen samples correlate best with ref.
func (w *WSOLA) bestOverlap(ref, input []float64, predicted int) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := tiny
	for _, v := range ref {
		refEnergy += v * v
	}

	for cand := predicted - w.searchLen; cand <= predicted+w.searchLen; cand++ {
		dot := 0.0
		candEnergy := tiny
		for i, rv := range ref {
			cv := zeroAt(input, cand+i)
			dot += rv * cv
			candEnergy += cv * cv
		}
		if score := dot / math.Sqrt(refEnergy*candEnergy); score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
