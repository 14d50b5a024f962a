package vslib

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-vshift/dsp/dither"
	"github.com/cwbudde/algo-vshift/dsp/resample"
	"github.com/cwbudde/algo-vshift/internal/wavio"
	"github.com/cwbudde/algo-vshift/synth"
)

// mixItem is a snapshot of an item taken under the project lock.
type mixItem struct {
	number   int
	info     ItemInfo
	channels [][]float64
	points   []synth.Point
}

// MixSample returns the mix length in project samples, the largest item end
// over all items.
func (p *Project) MixSample() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, opErr("MixSample", ErrClosed)
	}

	total := 0
	for n, it := range p.items {
		if !fitsMix(it.info, p.info.SampFreq) {
			return 0, opErr("MixSample", fmt.Errorf("%w: item %d ends past %d frames", ErrInvalidParam, n, maxMixFrames))
		}
		total = max(total, it.info.Offset+projectLength(it.info.SampleOrg, it.info.SampFreq, p.info.SampFreq))
	}
	return total, nil
}

// MixData renders n sample frames of the mix starting at project sample
// start and returns them as interleaved signed integers of the given bit
// depth. Frames past the end of the mix are silent.
func (p *Project) MixData(ctx context.Context, bits, channels, start, n int, opts ...ExportOption) ([]int, error) {
	if err := validateOutput(bits, channels); err != nil {
		return nil, opErr("MixData", err)
	}
	if start < 0 || n < 0 {
		return nil, opErr("MixData", fmt.Errorf("%w: start and length must be >= 0: %d, %d", ErrInvalidParam, start, n))
	}

	mix, _, err := p.mix(ctx, channels)
	if err != nil {
		return nil, opErr("MixData", err)
	}

	data, err := quantize(mix, bits, start, n, opts)
	if err != nil {
		return nil, opErr("MixData", err)
	}
	return data, nil
}

// mix renders every audible item to the project rate and sums them.
func (p *Project) mix(ctx context.Context, channels int) ([][]float64, int, error) {
	items, info, length, err := p.snapshot()
	if err != nil {
		return nil, 0, err
	}

	rendered := make([][][]float64, len(items))

	g, gctx := errgroup.WithContext(ctx)
	workers := p.cfg.synth.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, it := range items {
		g.Go(func() error {
			out, err := p.renderItem(gctx, it, channels, info.SampFreq)
			if err != nil {
				return fmt.Errorf("item %d: %w", it.number, err)
			}
			rendered[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, length)
	}
	for i, it := range items {
		for c, ch := range rendered[i] {
			dst := out[c][it.info.Offset:]
			for k, v := range ch[:min(len(ch), len(dst))] {
				dst[k] += v
			}
		}
	}

	p.logger.Debug("mix rendered",
		slog.Int("items", len(items)),
		slog.Int("samples", length),
		slog.Int("channels", channels))
	return out, info.SampFreq, nil
}

// snapshot copies what rendering needs so that it can run without the lock.
// Point gains and pans fold in the track and master settings.
func (p *Project) snapshot() ([]mixItem, ProjectInfo, int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ProjectInfo{}, 0, ErrClosed
	}

	solo := p.anySolo()
	length := 0
	var items []mixItem
	for _, n := range p.itemNumbers() {
		it := p.items[n]
		if !fitsMix(it.info, p.info.SampFreq) {
			return nil, ProjectInfo{}, 0, fmt.Errorf("%w: item %d ends past %d frames", ErrInvalidParam, n, maxMixFrames)
		}
		end := it.info.Offset + projectLength(it.info.SampleOrg, it.info.SampFreq, p.info.SampFreq)
		length = max(length, end)

		if !p.audible(it.info.TrackNum, solo) {
			continue
		}
		track := p.tracks[it.info.TrackNum]
		scale := track.Volume * p.info.MasterVolume

		pts := make([]synth.Point, len(it.points))
		for i, cp := range it.points {
			g := cp.gain()
			if scale != 1 {
				g *= scale
			}
			pts[i] = synth.Point{
				ShiftCents: cp.shiftCents(),
				Gain:       g,
				Pan:        max(-1, min(1, cp.Pan+track.Pan)),
			}
		}
		items = append(items, mixItem{number: n, info: it.info, channels: it.channels, points: pts})
	}
	return items, p.info, length, nil
}

// renderItem applies the item's edits and converts it to the project rate.
func (p *Project) renderItem(ctx context.Context, it mixItem, channels, rate int) ([][]float64, error) {
	cfg := p.cfg.synth
	cfg.Mode = it.info.SynthMode.kind()
	r, err := synth.New(cfg, synth.WithLogger(p.logger.With(slog.Int("item", it.number))))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}

	out, err := r.Render(ctx, synth.Job{
		Channels:    it.channels,
		SampleRate:  it.info.SampFreq,
		CtrlPntPs:   it.info.CtrlPntPs,
		Points:      it.points,
		OutChannels: channels,
	})
	if err != nil {
		return nil, err
	}

	if it.info.SampFreq == rate {
		return out, nil
	}
	for c, ch := range out {
		conv, err := resample.Convert(ch, float64(it.info.SampFreq), float64(rate))
		if err != nil {
			return nil, fmt.Errorf("resample %d -> %d Hz: %w", it.info.SampFreq, rate, err)
		}
		out[c] = conv
	}
	return out, nil
}

// quantize converts frames [start, start+n) of mix to interleaved integers.
// Each channel has its own quantizer so that noise shaping state does not
// leak across channels.
func quantize(mix [][]float64, bits, start, n int, opts []ExportOption) ([]int, error) {
	var ec exportConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&ec)
		}
	}

	qopts := []dither.Option{dither.WithBitDepth(bits), dither.WithType(ec.dither)}
	if ec.shaping {
		qopts = append(qopts, dither.WithNoiseShaping())
	}

	channels := len(mix)
	qs := make([]*dither.Quantizer, channels)
	for c := range qs {
		qo := qopts
		if ec.seed != nil {
			qo = append(qo[:len(qo):len(qo)], dither.WithSeed(*ec.seed+uint64(c)))
		}
		q, err := dither.NewQuantizer(qo...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParam, err)
		}
		qs[c] = q
	}

	out := make([]int, n*channels)
	for i := range n {
		for c, ch := range mix {
			x := 0.0
			if k := start + i; k < len(ch) {
				x = ch[k]
			}
			out[i*channels+c] = qs[c].Quantize(x)
		}
	}
	return out, nil
}

// fitsMix reports whether an item ends within maxMixFrames at project rate.
func fitsMix(info ItemInfo, rate int) bool {
	return info.Offset >= 0 && info.Offset <= maxMixFrames-projectLength(info.SampleOrg, info.SampFreq, rate)
}

// projectLength is the length of n samples at rate from after conversion to
// rate to, matching resample.Convert.
func projectLength(n, from, to int) int {
	if from == to {
		return n
	}
	return int(math.Round(float64(n) * float64(to) / float64(from)))
}

func validateOutput(bits, channels int) error {
	if !wavio.ValidBitDepth(bits) {
		return fmt.Errorf("%w: bit depth must be 8, 16, 24 or 32: %d", ErrInvalidParam, bits)
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: channel count must be 1 or 2: %d", ErrInvalidParam, channels)
	}
	return nil
}
