package vslib

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-vshift/analysis"
	"github.com/cwbudde/algo-vshift/internal/wavio"
)

type item struct {
	info ItemInfo
	// source is the wave file the item was read from, empty for in-memory
	// items.
	source   string
	channels [][]float64
	points   []CtrlPnt
}

// AddItem decodes and analyzes the wave file at path and adds it to the
// project on track 0 at offset 0. The first item added to an empty project
// sets the project sample rate. It returns the new item number.
func (p *Project) AddItem(path string) (int, error) {
	if err := p.checkOpen(); err != nil {
		return 0, opErr("AddItem", err)
	}

	w, err := readWave(path)
	if err != nil {
		return 0, opErr("AddItem", err)
	}

	n, err := p.addItem(path, path, w.SampleRate, w.Channels)
	if err != nil {
		return 0, opErr("AddItem", err)
	}
	return n, nil
}

// AddItemSamples adds in-memory audio as an item. Samples are normalized to
// [-1, 1] and copied; channels must be one or two slices of equal length.
func (p *Project) AddItemSamples(name string, sampleRate int, channels [][]float64) (int, error) {
	if err := validateSamples(sampleRate, channels); err != nil {
		return 0, opErr("AddItemSamples", err)
	}

	owned := make([][]float64, len(channels))
	for c, ch := range channels {
		owned[c] = append([]float64(nil), ch...)
	}

	n, err := p.addItem(name, "", sampleRate, owned)
	if err != nil {
		return 0, opErr("AddItemSamples", err)
	}
	return n, nil
}

func (p *Project) addItem(name, source string, rate int, channels [][]float64) (int, error) {
	a, err := p.analyzer()
	if err != nil {
		return 0, err
	}

	frames, err := a.Analyze(analysis.Downmix(channels), rate)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWaveFormat, err)
	}

	cfg := a.Config()
	it := &item{
		info: ItemInfo{
			FileName:   name,
			SampFreq:   rate,
			Channel:    len(channels),
			SampleOrg:  len(channels[0]),
			SampleEdit: len(channels[0]),
			CtrlPntPs:  cfg.CtrlPntPs,
			CtrlPntNum: len(frames),
			SynthMode:  modeOf(p.cfg.synth.Mode),
			TrackNum:   defaultTrack,
		},
		source:   source,
		channels: channels,
		points:   ctrlPntsFromFrames(frames),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}
	if len(p.items) == 0 {
		p.info.SampFreq = rate
	}
	if _, ok := p.tracks[defaultTrack]; !ok {
		p.tracks[defaultTrack] = defaultTrackInfo()
	}

	n := p.nextItem
	p.nextItem++
	p.items[n] = it

	p.logger.Debug("item added",
		slog.Int("item", n),
		slog.String("file", name),
		slog.Int("samples", it.info.SampleOrg),
		slog.Int("sample_rate", rate),
		slog.Int("ctrl_pnts", it.info.CtrlPntNum))
	return n, nil
}

// ctrlPntsFromFrames seeds control points from analysis: the edit fields
// start equal to the analysis fields.
func ctrlPntsFromFrames(frames []analysis.Frame) []CtrlPnt {
	ana := make([]int, len(frames))
	voiced := make([]bool, len(frames))
	for i, f := range frames {
		if f.Voiced {
			ana[i] = Freq2Cent(f.Hz)
			voiced[i] = true
		}
	}
	org := analysis.FillUnvoiced(ana, voiced)

	pts := make([]CtrlPnt, len(frames))
	for i, f := range frames {
		flag := 0
		if voiced[i] {
			flag = 1
		}
		pts[i] = CtrlPnt{
			DynOrg:     f.RMS,
			DynEdit:    f.RMS,
			Volume:     1,
			PitAna:     ana[i],
			PitOrg:     org[i],
			PitEdit:    org[i],
			PitFlgOrg:  flag,
			PitFlgEdit: flag,
		}
	}
	return pts
}

// RemoveItem deletes an item. Its number is not reused.
func (p *Project) RemoveItem(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return opErr("RemoveItem", ErrClosed)
	}
	if _, ok := p.items[n]; !ok {
		return opErr("RemoveItem", fmt.Errorf("%w: %d", ErrItemNotFound, n))
	}
	delete(p.items, n)
	p.logger.Debug("item removed", slog.Int("item", n))
	return nil
}

// ItemInfo returns the description of item n.
func (p *Project) ItemInfo(n int) (ItemInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	it, err := p.lookup(n)
	if err != nil {
		return ItemInfo{}, opErr("ItemInfo", err)
	}
	return it.info, nil
}

// SetItemInfo updates the writable fields of item n: SynthMode, TrackNum
// and Offset. Every other field must be left as returned by ItemInfo.
// Moving an item to a new track number creates that track.
func (p *Project) SetItemInfo(n int, info ItemInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	it, err := p.lookup(n)
	if err != nil {
		return opErr("SetItemInfo", err)
	}

	cur := it.info
	cur.SynthMode, cur.TrackNum, cur.Offset = info.SynthMode, info.TrackNum, info.Offset
	if cur != info {
		return opErr("SetItemInfo", fmt.Errorf("%w: only synth mode, track and offset are writable", ErrInvalidParam))
	}

	switch {
	case !info.SynthMode.valid():
		return opErr("SetItemInfo", fmt.Errorf("%w: synth mode %d", ErrInvalidParam, int(info.SynthMode)))
	case !inRangeInt(info.TrackNum, 0, maxTracks-1):
		return opErr("SetItemInfo", fmt.Errorf("%w: track must be in [0, %d]: %d", ErrInvalidParam, maxTracks-1, info.TrackNum))
	case info.Offset < 0:
		return opErr("SetItemInfo", fmt.Errorf("%w: offset must be >= 0: %d", ErrInvalidParam, info.Offset))
	case !fitsMix(info, p.info.SampFreq):
		return opErr("SetItemInfo", fmt.Errorf("%w: item must end within %d frames: offset %d", ErrInvalidParam, maxMixFrames, info.Offset))
	}

	if _, ok := p.tracks[info.TrackNum]; !ok {
		p.tracks[info.TrackNum] = defaultTrackInfo()
	}
	it.info = info
	return nil
}

// lookup must be called with p.mu held.
func (p *Project) lookup(n int) (*item, error) {
	if p.closed {
		return nil, ErrClosed
	}
	it, ok := p.items[n]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, n)
	}
	return it, nil
}

func (p *Project) checkOpen() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	return nil
}

// readWave decodes a wave file and maps decoder failures to project errors.
func readWave(path string) (*wavio.Wave, error) {
	w, err := wavio.Read(path)
	switch {
	case err == nil:
	case errors.Is(err, wavio.ErrEmpty):
		return nil, fmt.Errorf("%w: %s", ErrWaveEmpty, path)
	case errors.Is(err, wavio.ErrFormat):
		return nil, fmt.Errorf("%w: %w", ErrWaveFormat, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrWaveOpen, err)
	}

	if err := validateSamples(w.SampleRate, w.Channels); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func validateSamples(rate int, channels [][]float64) error {
	switch {
	case len(channels) == 0 || len(channels) > 2:
		return fmt.Errorf("%w: channel count must be 1 or 2: %d", ErrWaveFormat, len(channels))
	case rate < minSampFreq || rate > maxSampFreq:
		return fmt.Errorf("%w: sample rate must be in [%d, %d]: %d", ErrWaveFormat, minSampFreq, maxSampFreq, rate)
	case len(channels[0]) == 0:
		return ErrWaveEmpty
	}
	for c, ch := range channels {
		if len(ch) != len(channels[0]) {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrWaveFormat, c, len(ch), len(channels[0]))
		}
	}
	return nil
}
