package pitch

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-vshift/dsp/resample"
	"github.com/cwbudde/algo-vshift/dsp/window"
)

const (
	defaultFrameSize   = 2048
	defaultAnalysisHop = 512
	minFrameSize       = 64
	normFloor          = 1e-12

	// peakFloor is the lowest spectral peak, relative to the loudest bin,
	// that owns a region of the spectrum (-120 dB).
	peakFloor = 1e-6

	// binShiftLimit is the largest |ratio-1| handled by direct bin shifting.
	// Wider intervals go through stretch and resample.
	binShiftLimit = 0.15
)

// VocoderOption configures a Vocoder.
type VocoderOption func(*Vocoder) error

// WithFrameSize sets the FFT frame size (power of two, >= 64).
func WithFrameSize(size int) VocoderOption {
	return func(v *Vocoder) error {
		if size < minFrameSize || size&(size-1) != 0 {
			return fmt.Errorf("vocoder frame size must be power-of-two and >= %d: %d", minFrameSize, size)
		}
		v.frameSize = size
		if v.analysisHop >= size {
			v.analysisHop = size / 4
		}
		return nil
	}
}

// WithAnalysisHop sets the analysis hop in samples.
func WithAnalysisHop(hop int) VocoderOption {
	return func(v *Vocoder) error {
		if hop <= 0 || hop >= v.frameSize {
			return fmt.Errorf("vocoder analysis hop must be in [1, %d): %d", v.frameSize, hop)
		}
		v.analysisHop = hop
		return nil
	}
}

// Vocoder shifts pitch in the STFT domain.
//
// Intervals close to unison move each spectral peak and the bins around it
// as one region and rotate the region's phases together. Wider intervals
// time-stretch with identity phase locking and resample the result back to
// the input length.
type Vocoder struct {
	sampleRate  float64
	ratio       float64
	frameSize   int
	analysisHop int

	plan   *algofft.Plan[complex128]
	win    []float64
	omega  []float64
	prev   []float64
	accum  []float64
	spec   []complex128
	synth  []complex128
	frame  []complex128
	mag    []float64
	freq   []float64
	rot    []float64
	peaks  []int
}

// NewVocoder constructs a phase-vocoder shifter at unity ratio.
func NewVocoder(sampleRate float64, opts ...VocoderOption) (*Vocoder, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("vocoder sample rate must be positive and finite: %f", sampleRate)
	}

	v := &Vocoder{
		sampleRate:  sampleRate,
		ratio:       1,
		frameSize:   defaultFrameSize,
		analysisHop: defaultAnalysisHop,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if err := v.allocate(); err != nil {
		return nil, err
	}
	return v, nil
}

// SampleRate returns the sample rate in Hz.
func (v *Vocoder) SampleRate() float64 { return v.sampleRate }

// Ratio returns the pitch ratio.
func (v *Vocoder) Ratio() float64 { return v.ratio }

// FrameSize returns the FFT frame size.
func (v *Vocoder) FrameSize() int { return v.frameSize }

// Context returns one FFT frame, in samples.
func (v *Vocoder) Context() int { return v.frameSize }

// SetRatio updates the pitch ratio.
func (v *Vocoder) SetRatio(ratio float64) error {
	if err := validateRatio(ratio); err != nil {
		return err
	}
	v.ratio = ratio
	return nil
}

// SetCents updates the pitch shift in cents.
func (v *Vocoder) SetCents(cents float64) error {
	ratio, err := ratioFromCents(cents)
	if err != nil {
		return err
	}
	v.ratio = ratio
	return nil
}

// Reset clears the phase accumulators.
func (v *Vocoder) Reset() {
	clear(v.prev)
	clear(v.accum)
	clear(v.rot)
}

// Process returns a pitch-shifted copy of input with equal length. On an
// internal FFT failure it returns an unshifted copy; use ProcessWithError to
// observe the failure.
func (v *Vocoder) Process(input []float64) []float64 {
	out, err := v.ProcessWithError(input)
	if err != nil {
		return copyOf(input)
	}
	return out
}

// ProcessWithError is Process with error reporting.
func (v *Vocoder) ProcessWithError(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if math.Abs(v.ratio-1) <= identityEps {
		return copyOf(input), nil
	}

	v.Reset()
	if math.Abs(v.ratio-1) <= binShiftLimit {
		return v.binShift(input)
	}
	return v.stretchResample(input)
}

func (v *Vocoder) allocate() error {
	plan, err := algofft.NewPlan64(v.frameSize)
	if err != nil {
		return fmt.Errorf("vocoder: failed to create FFT plan: %w", err)
	}
	v.plan = plan
	v.win = window.Generate(window.TypeHann, v.frameSize, window.WithPeriodic())

	bins := v.frameSize/2 + 1
	v.omega = make([]float64, bins)
	for k := range bins {
		v.omega[k] = 2 * math.Pi * float64(k) / float64(v.frameSize)
	}

	v.prev = make([]float64, bins)
	v.accum = make([]float64, bins)
	v.mag = make([]float64, bins)
	v.freq = make([]float64, bins)
	v.rot = make([]float64, bins)
	v.peaks = make([]int, 0, bins)
	v.spec = make([]complex128, v.frameSize)
	v.synth = make([]complex128, v.frameSize)
	v.frame = make([]complex128, v.frameSize)
	return nil
}

// analyze windows the frame at pos, transforms it and fills mag and freq
// with magnitudes and instantaneous frequencies (radians per sample).
func (v *Vocoder) analyze(input []float64, pos int, hop float64) error {
	for i := range v.frameSize {
		v.spec[i] = complex(zeroAt(input, pos+i)*v.win[i], 0)
	}
	if err := v.plan.Forward(v.spec, v.spec); err != nil {
		return fmt.Errorf("vocoder: forward FFT failed: %w", err)
	}

	for k := range v.mag {
		re, im := real(v.spec[k]), imag(v.spec[k])
		v.mag[k] = math.Hypot(re, im)
		phase := math.Atan2(im, re)
		delta := wrapPhase(phase - v.prev[k] - v.omega[k]*hop)
		v.freq[k] = v.omega[k] + delta/hop
		v.prev[k] = phase
	}
	return nil
}

// synthesize mirrors the half spectrum, inverse transforms it and overlap-adds
// the windowed frame into out at pos.
func (v *Vocoder) synthesize(out, norm []float64, pos int) error {
	half := v.frameSize / 2
	v.synth[0] = complex(real(v.synth[0]), 0)
	v.synth[half] = complex(real(v.synth[half]), 0)
	for k := 1; k < half; k++ {
		s := v.synth[k]
		v.synth[v.frameSize-k] = complex(real(s), -imag(s))
	}

	if err := v.plan.Inverse(v.frame, v.synth); err != nil {
		return fmt.Errorf("vocoder: inverse FFT failed: %w", err)
	}

	for i := range v.frameSize {
		w := v.win[i]
		out[pos+i] += real(v.frame[i]) * w
		norm[pos+i] += w * w
	}
	return nil
}

// binShift moves the region of every peak by the peak's bin offset and
// rotates all bins of the region by a common phase that advances with the
// frequency difference of the peak. Bins of one partial keep their phase
// relations, so the partial keeps its level.
func (v *Vocoder) binShift(input []float64) ([]float64, error) {
	hop := v.analysisHop
	hopF := float64(hop)
	half := v.frameSize / 2
	frames := 1 + (len(input)-1)/hop

	out := make([]float64, (frames-1)*hop+v.frameSize)
	norm := make([]float64, len(out))

	for f := range frames {
		pos := f * hop
		if err := v.analyze(input, pos, hopF); err != nil {
			return nil, err
		}

		v.findPeaks(half)
		if len(v.peaks) == 0 {
			v.peaks = append(v.peaks, loudest(v.mag))
		}
		clear(v.synth)

		for i, pk := range v.peaks {
			lo, hi := 0, half
			if i > 0 {
				lo = (v.peaks[i-1]+pk)/2 + 1
			}
			if i+1 < len(v.peaks) {
				hi = (pk + v.peaks[i+1]) / 2
			}

			shift := int(math.Round(float64(pk)*v.ratio)) - pk
			rot := v.rot[pk]
			if f > 0 {
				rot = wrapPhase(rot + (v.ratio-1)*v.freq[pk]*hopF)
			}

			for k := lo; k <= hi; k++ {
				v.rot[k] = rot
				q := k + shift
				if q < 0 || q > half {
					continue
				}
				v.synth[q] += cmplx.Rect(v.mag[k], v.prev[k]+rot)
			}
		}

		if err := v.synthesize(out, norm, pos); err != nil {
			return nil, err
		}
	}

	normalize(out, norm)
	return fit(out, len(input)), nil
}

func (v *Vocoder) stretchResample(input []float64) ([]float64, error) {
	anaHop := v.analysisHop
	synHop := max(1, int(math.Round(float64(anaHop)*v.ratio)))
	half := v.frameSize / 2
	frames := 1 + (len(input)-1)/anaHop

	stretched := make([]float64, (frames-1)*synHop+v.frameSize)
	norm := make([]float64, len(stretched))

	for f := range frames {
		if err := v.analyze(input, f*anaHop, float64(anaHop)); err != nil {
			return nil, err
		}

		v.lockPhases(half, float64(synHop))

		for k := 0; k <= half; k++ {
			v.synth[k] = complex(v.mag[k]*math.Cos(v.accum[k]), v.mag[k]*math.Sin(v.accum[k]))
		}

		if err := v.synthesize(stretched, norm, f*synHop); err != nil {
			return nil, err
		}
	}

	normalize(stretched, norm)

	if synHop == anaHop {
		return fit(stretched, len(input)), nil
	}

	shifted, err := resample.Convert(stretched, float64(synHop), float64(anaHop))
	if err != nil {
		return nil, fmt.Errorf("vocoder: resampling failed: %w", err)
	}
	return fit(shifted, len(input)), nil
}

// lockPhases advances the synthesis phases with identity phase locking:
// spectral peaks advance by their own frequency and the bins around a peak
// keep their analysis phase offset to it.
func (v *Vocoder) lockPhases(half int, synHop float64) {
	v.findPeaks(half)

	if len(v.peaks) == 0 {
		for k := 0; k <= half; k++ {
			v.accum[k] += v.freq[k] * synHop
		}
		return
	}

	for _, pk := range v.peaks {
		v.accum[pk] += v.freq[pk] * synHop
	}

	p := 0
	for k := 0; k <= half; k++ {
		for p+1 < len(v.peaks) && abs(v.peaks[p+1]-k) < abs(v.peaks[p]-k) {
			p++
		}
		if pk := v.peaks[p]; k != pk {
			v.accum[k] = v.accum[pk] + (v.prev[k] - v.prev[pk])
		}
	}
}

// findPeaks collects the local magnitude maxima of the current frame that
// rise above peakFloor relative to its loudest bin.
func (v *Vocoder) findPeaks(half int) {
	v.peaks = v.peaks[:0]
	floor := v.mag[loudest(v.mag)] * peakFloor
	for k := 1; k < half; k++ {
		if v.mag[k] > floor && v.mag[k] >= v.mag[k-1] && v.mag[k] > v.mag[k+1] {
			v.peaks = append(v.peaks, k)
		}
	}
}

func loudest(mag []float64) int {
	best := 0
	for k, m := range mag {
		if m > mag[best] {
			best = k
		}
	}
	return best
}

func normalize(out, norm []float64) {
	for i := range out {
		if norm[i] > normFloor {
			out[i] /= norm[i]
		}
	}
}

func fit(in []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, in)
	return out
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
