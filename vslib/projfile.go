package vslib

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-vshift/analysis"
)

// projectFormat is the version written to project files.
const projectFormat = 1

var (
	projEncMode cbor.EncMode
	projDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}
	projEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create project CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	projDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create project CBOR decoder mode: %v", err))
	}
}

type fileProject struct {
	Version  int         `cbor:"1,keyasint"`
	ID       []byte      `cbor:"2,keyasint"`
	Info     fileInfo    `cbor:"3,keyasint"`
	Tracks   []fileTrack `cbor:"4,keyasint"`
	Items    []fileItem  `cbor:"5,keyasint"`
	NextItem int         `cbor:"6,keyasint"`
}

type fileInfo struct {
	MasterVolume float64 `cbor:"1,keyasint"`
	SampFreq     int     `cbor:"2,keyasint"`
}

type fileTrack struct {
	Number int     `cbor:"1,keyasint"`
	Volume float64 `cbor:"2,keyasint"`
	Pan    float64 `cbor:"3,keyasint,omitempty"`
	Mute   bool    `cbor:"4,keyasint,omitempty"`
	Solo   bool    `cbor:"5,keyasint,omitempty"`
}

type fileItem struct {
	Number     int           `cbor:"1,keyasint"`
	Path       string        `cbor:"2,keyasint"`
	SampFreq   int           `cbor:"3,keyasint"`
	Channel    int           `cbor:"4,keyasint"`
	SampleOrg  int           `cbor:"5,keyasint"`
	CtrlPntPs  int           `cbor:"6,keyasint"`
	SynthMode  int           `cbor:"7,keyasint,omitempty"`
	TrackNum   int           `cbor:"8,keyasint,omitempty"`
	Offset     int           `cbor:"9,keyasint,omitempty"`
	CtrlPnts   []fileCtrlPnt `cbor:"10,keyasint"`
}

type fileCtrlPnt struct {
	DynOrg      float64 `cbor:"1,keyasint"`
	DynEdit     float64 `cbor:"2,keyasint"`
	Volume      float64 `cbor:"3,keyasint"`
	Pan         float64 `cbor:"4,keyasint,omitempty"`
	SpcDyn      float64 `cbor:"5,keyasint,omitempty"`
	PitAna      int     `cbor:"6,keyasint,omitempty"`
	PitOrg      int     `cbor:"7,keyasint"`
	PitEdit     int     `cbor:"8,keyasint"`
	Formant     int     `cbor:"9,keyasint,omitempty"`
	PitFlgOrg   int     `cbor:"10,keyasint,omitempty"`
	PitFlgEdit  int     `cbor:"11,keyasint,omitempty"`
	Breathiness int     `cbor:"12,keyasint,omitempty"`
	Eq1         int     `cbor:"13,keyasint,omitempty"`
	Eq2         int     `cbor:"14,keyasint,omitempty"`
}

// Save writes the project to path. Wave files are referenced relative to
// the project file's directory when possible. Items added from memory have
// no wave file and cannot be saved.
func (p *Project) Save(path string) error {
	doc, err := p.document(path)
	if err != nil {
		return opErr("Save", err)
	}

	data, err := projEncMode.Marshal(doc)
	if err != nil {
		return opErr("Save", fmt.Errorf("%w: %w", ErrProjectSave, err))
	}
	if err := writeFileAtomic(path, data); err != nil {
		return opErr("Save", fmt.Errorf("%w: %w", ErrProjectSave, err))
	}

	p.logger.Debug("project saved", slog.String("file", path), slog.Int("items", len(doc.Items)))
	return nil
}

func (p *Project) document(path string) (*fileProject, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProjectSave, err)
	}

	id, _ := p.id.MarshalBinary()
	doc := &fileProject{
		Version:  projectFormat,
		ID:       id,
		Info:     fileInfo{MasterVolume: p.info.MasterVolume, SampFreq: p.info.SampFreq},
		NextItem: p.nextItem,
	}

	for n := range maxTracks {
		t, ok := p.tracks[n]
		if !ok {
			continue
		}
		doc.Tracks = append(doc.Tracks, fileTrack{Number: n, Volume: t.Volume, Pan: t.Pan, Mute: t.Mute, Solo: t.Solo})
	}

	for _, n := range p.itemNumbers() {
		it := p.items[n]
		if it.source == "" {
			return nil, fmt.Errorf("%w: item %d (%s) has no wave file", ErrProjectSave, n, it.info.FileName)
		}
		ref, err := relativeTo(dir, it.source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProjectSave, err)
		}

		fi := fileItem{
			Number:    n,
			Path:      ref,
			SampFreq:  it.info.SampFreq,
			Channel:   it.info.Channel,
			SampleOrg: it.info.SampleOrg,
			CtrlPntPs: it.info.CtrlPntPs,
			SynthMode: int(it.info.SynthMode),
			TrackNum:  it.info.TrackNum,
			Offset:    it.info.Offset,
			CtrlPnts:  make([]fileCtrlPnt, len(it.points)),
		}
		for i, cp := range it.points {
			fi.CtrlPnts[i] = fileCtrlPnt(cp)
		}
		doc.Items = append(doc.Items, fi)
	}
	return doc, nil
}

// Open loads a project saved with Save. Wave files are decoded again and
// must still match the stored rate, channel count and length; control
// points are restored as saved.
func Open(path string, opts ...Option) (*Project, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, opErr("Open", fmt.Errorf("%w: %w", ErrProjectOpen, err))
	}

	var doc fileProject
	if err := projDecMode.Unmarshal(data, &doc); err != nil {
		return nil, opErr("Open", fmt.Errorf("%w: %w", ErrProjectOpen, err))
	}
	if doc.Version != projectFormat {
		return nil, opErr("Open", fmt.Errorf("%w: unsupported format version %d", ErrProjectOpen, doc.Version))
	}
	id, err := uuid.FromBytes(doc.ID)
	if err != nil {
		return nil, opErr("Open", fmt.Errorf("%w: project id: %w", ErrProjectOpen, err))
	}

	info := ProjectInfo{MasterVolume: doc.Info.MasterVolume, SampFreq: doc.Info.SampFreq}
	if err := validateProjectInfo(info); err != nil {
		return nil, opErr("Open", fmt.Errorf("%w: %w", ErrProjectOpen, err))
	}

	p := newProject(id, cfg)
	p.info = info
	p.nextItem = doc.NextItem

	for _, ft := range doc.Tracks {
		t := TrackInfo{Volume: ft.Volume, Pan: ft.Pan, Mute: ft.Mute, Solo: ft.Solo}
		if !inRangeInt(ft.Number, 0, maxTracks-1) || !inRange(t.Volume, 0, maxVolume) || !inRange(t.Pan, -1, 1) {
			return nil, opErr("Open", fmt.Errorf("%w: invalid track %d", ErrProjectOpen, ft.Number))
		}
		p.tracks[ft.Number] = t
	}

	base := filepath.Dir(path)
	for _, fi := range doc.Items {
		it, err := loadItem(base, fi, info.SampFreq)
		if err != nil {
			return nil, opErr("Open", fmt.Errorf("%w: item %d: %w", ErrProjectOpen, fi.Number, err))
		}
		if _, dup := p.items[fi.Number]; dup || fi.Number < 0 {
			return nil, opErr("Open", fmt.Errorf("%w: invalid item number %d", ErrProjectOpen, fi.Number))
		}
		if _, ok := p.tracks[it.info.TrackNum]; !ok {
			p.tracks[it.info.TrackNum] = defaultTrackInfo()
		}
		p.items[fi.Number] = it
		p.nextItem = max(p.nextItem, fi.Number+1)
	}

	p.logger.Debug("project opened", slog.String("file", path), slog.Int("items", len(p.items)))
	return p, nil
}

func loadItem(base string, fi fileItem, rate int) (*item, error) {
	src := filepath.FromSlash(fi.Path)
	if !filepath.IsAbs(src) {
		src = filepath.Join(base, src)
	}

	w, err := readWave(src)
	if err != nil {
		return nil, err
	}

	mode := SynthMode(fi.SynthMode)
	switch {
	case w.SampleRate != fi.SampFreq:
		return nil, fmt.Errorf("%s: sample rate %d, project expects %d", src, w.SampleRate, fi.SampFreq)
	case len(w.Channels) != fi.Channel:
		return nil, fmt.Errorf("%s: %d channels, project expects %d", src, len(w.Channels), fi.Channel)
	case w.Len() != fi.SampleOrg:
		return nil, fmt.Errorf("%s: %d samples, project expects %d", src, w.Len(), fi.SampleOrg)
	case fi.CtrlPntPs < 1 || fi.CtrlPntPs > 1000 || len(fi.CtrlPnts) == 0:
		return nil, errors.New("no control points")
	case len(fi.CtrlPnts) != analysis.FrameCount(fi.SampleOrg, fi.SampFreq, fi.CtrlPntPs):
		return nil, fmt.Errorf("%d control points, %d samples at %d per second need %d",
			len(fi.CtrlPnts), fi.SampleOrg, fi.CtrlPntPs, analysis.FrameCount(fi.SampleOrg, fi.SampFreq, fi.CtrlPntPs))
	case !mode.valid():
		return nil, fmt.Errorf("synth mode %d", fi.SynthMode)
	case !inRangeInt(fi.TrackNum, 0, maxTracks-1) || fi.Offset < 0:
		return nil, fmt.Errorf("track %d offset %d", fi.TrackNum, fi.Offset)
	}

	info := ItemInfo{
		FileName:   src,
		SampFreq:   fi.SampFreq,
		Channel:    fi.Channel,
		SampleOrg:  fi.SampleOrg,
		SampleEdit: fi.SampleOrg,
		CtrlPntPs:  fi.CtrlPntPs,
		CtrlPntNum: len(fi.CtrlPnts),
		SynthMode:  mode,
		TrackNum:   fi.TrackNum,
		Offset:     fi.Offset,
	}
	if !fitsMix(info, rate) {
		return nil, fmt.Errorf("offset %d ends past %d frames", fi.Offset, maxMixFrames)
	}

	it := &item{
		info:     info,
		source:   src,
		channels: w.Channels,
		points:   make([]CtrlPnt, len(fi.CtrlPnts)),
	}
	for i, fc := range fi.CtrlPnts {
		cp := CtrlPnt(fc)
		if err := validateCtrlPnt(cp); err != nil {
			return nil, fmt.Errorf("control point %d: %w", i, err)
		}
		it.points[i] = cp
	}
	return it, nil
}

// relativeTo expresses path relative to dir, falling back to the absolute
// path when no relative form exists.
func relativeTo(dir, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if rel, err := filepath.Rel(dir, abs); err == nil {
		return filepath.ToSlash(rel), nil
	}
	return abs, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vsp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
