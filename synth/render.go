package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-vshift/dsp/pitch"
)

// Point is the edit state of one control point.
type Point struct {
	// ShiftCents is the pitch shift relative to the source.
	ShiftCents float64
	// Gain is a linear amplitude factor.
	Gain float64
	// Pan is in [-1, 1], negative to the left.
	Pan float64
}

// Job describes one item render.
type Job struct {
	// Channels holds the source samples, one slice per channel. All channels
	// must have the same length.
	Channels   [][]float64
	SampleRate int
	CtrlPntPs  int
	Points     []Point
	// OutChannels is 1 or 2. Zero keeps the source channel count.
	OutChannels int
}

// ErrInvalidJob reports a malformed Job.
var ErrInvalidJob = errors.New("synth: invalid job")

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer renders jobs. It keeps no per-job state and is safe for
// concurrent use.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Renderer.
func New(cfg Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Render returns the edited channels of job. The output has the length of
// the source and OutChannels channels.
func (r *Renderer) Render(ctx context.Context, job Job) ([][]float64, error) {
	length, err := job.validate()
	if err != nil {
		return nil, err
	}

	shifts := make([]float64, len(job.Points))
	gains := make([]float64, len(job.Points))
	pans := make([]float64, len(job.Points))
	for i, p := range job.Points {
		shifts[i] = clampCents(p.ShiftCents)
		gains[i] = p.Gain
		pans[i] = max(-1, min(1, p.Pan))
	}

	segs := segmentize(shifts, length, job.SampleRate, job.CtrlPntPs, r.cfg.ToleranceCents)
	half := int(math.Round(r.cfg.CrossfadeMs * 0.001 * float64(job.SampleRate) / 2))
	assignFades(segs, half)

	out, err := r.renderSegments(ctx, job, segs, length)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("segments rendered",
		slog.Int("segments", len(segs)),
		slog.Int("samples", length),
		slog.Int("channels", len(out)),
		slog.String("mode", r.cfg.Mode.String()))

	applyGain(out, gains, job.SampleRate, job.CtrlPntPs)

	outCh := job.OutChannels
	if outCh == 0 {
		outCh = len(out)
	}
	switch {
	case len(out) == 1 && outCh == 2:
		return panMono(out[0], pans, job.SampleRate, job.CtrlPntPs), nil
	case len(out) == 2 && outCh == 1:
		return [][]float64{mixDown(out)}, nil
	case len(out) == 2:
		balance(out, pans, job.SampleRate, job.CtrlPntPs)
	}
	return out, nil
}

// renderSegments shifts every segment concurrently and joins the results.
func (r *Renderer) renderSegments(ctx context.Context, job Job, segs []segment, length int) ([][]float64, error) {
	if len(segs) == 1 && segs[0].identity() {
		out := make([][]float64, len(job.Channels))
		for c, ch := range job.Channels {
			out[c] = append([]float64(nil), ch...)
		}
		return out, nil
	}

	rendered := make([][][]float64, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.workers())
	for i, s := range segs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chans, err := r.renderSegment(job, s)
			if err != nil {
				return fmt.Errorf("synth: segment %d (points %d-%d): %w", i, s.first, s.last, err)
			}
			rendered[i] = chans
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]float64, len(job.Channels))
	for c := range out {
		out[c] = make([]float64, length)
	}
	for i, s := range segs {
		lo := s.lo()
		for c, ch := range rendered[i] {
			dst := out[c]
			for k, v := range ch {
				n := lo + k
				if w := s.weight(n); w == 1 {
					dst[n] += v
				} else {
					dst[n] += v * w
				}
			}
		}
	}
	return out, nil
}

// renderSegment returns the samples [s.lo(), s.hi()) of every channel
// shifted by s.cents.
func (r *Renderer) renderSegment(job Job, s segment) ([][]float64, error) {
	lo, hi := s.lo(), s.hi()
	out := make([][]float64, len(job.Channels))

	if s.identity() {
		for c, ch := range job.Channels {
			out[c] = append([]float64(nil), ch[lo:hi]...)
		}
		return out, nil
	}

	for c, ch := range job.Channels {
		shifter, err := pitch.New(r.cfg.Mode, float64(job.SampleRate))
		if err != nil {
			return nil, err
		}
		if err := shifter.SetCents(s.cents); err != nil {
			return nil, err
		}

		ctxLen := shifter.Context()
		from := max(0, lo-ctxLen)
		to := min(len(ch), hi+ctxLen)
		shifted := shifter.Process(ch[from:to])
		out[c] = append([]float64(nil), shifted[lo-from:hi-from]...)
	}
	return out, nil
}

func (j Job) validate() (int, error) {
	switch {
	case len(j.Channels) == 0 || len(j.Channels) > 2:
		return 0, fmt.Errorf("%w: channel count must be 1 or 2: %d", ErrInvalidJob, len(j.Channels))
	case j.SampleRate <= 0:
		return 0, fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidJob, j.SampleRate)
	case j.CtrlPntPs <= 0:
		return 0, fmt.Errorf("%w: control points per second must be positive: %d", ErrInvalidJob, j.CtrlPntPs)
	case j.OutChannels < 0 || j.OutChannels > 2:
		return 0, fmt.Errorf("%w: output channel count must be 1 or 2: %d", ErrInvalidJob, j.OutChannels)
	}

	length := len(j.Channels[0])
	for c, ch := range j.Channels {
		if len(ch) != length {
			return 0, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidJob, c, len(ch), length)
		}
	}
	for i, p := range j.Points {
		if math.IsNaN(p.ShiftCents) || math.IsNaN(p.Gain) || math.IsNaN(p.Pan) || p.Gain < 0 {
			return 0, fmt.Errorf("%w: point %d: %+v", ErrInvalidJob, i, p)
		}
	}
	return length, nil
}

// clampCents limits a shift to the range the shifters support.
func clampCents(c float64) float64 {
	limit := pitch.RatioToCents(pitch.MaxRatio)
	return max(-limit, min(limit, c))
}

func mixDown(channels [][]float64) []float64 {
	out := make([]float64, len(channels[0]))
	for i := range out {
		out[i] = 0.5 * (channels[0][i] + channels[1][i])
	}
	return out
}
