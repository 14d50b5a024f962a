package vslib

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-vshift/analysis"
)

// Project is an editing session. All methods are safe for concurrent use.
type Project struct {
	mu sync.RWMutex

	id     uuid.UUID
	cfg    config
	logger *slog.Logger

	info     ProjectInfo
	items    map[int]*item
	nextItem int
	tracks   map[int]TrackInfo
	closed   bool
}

// New creates an empty project with a master volume of 1 and a sample rate
// of 44100 Hz.
func New(opts ...Option) *Project {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return newProject(uuid.New(), cfg)
}

func newProject(id uuid.UUID, cfg config) *Project {
	p := &Project{
		id:     id,
		cfg:    cfg,
		info:   ProjectInfo{MasterVolume: 1, SampFreq: defaultRate},
		items:  make(map[int]*item),
		tracks: map[int]TrackInfo{defaultTrack: defaultTrackInfo()},
	}
	p.logger = cfg.logger.With(slog.String("project", id.String()))
	return p
}

// ID returns the project identity, which is kept across Save and Open.
func (p *Project) ID() uuid.UUID { return p.id }

// Close releases the project. Closing twice is not an error; every other
// method fails with ErrClosed afterwards.
func (p *Project) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.items = nil
	p.tracks = nil
	p.logger.Debug("project closed")
	return nil
}

// Info returns the project settings.
func (p *Project) Info() (ProjectInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ProjectInfo{}, opErr("Info", ErrClosed)
	}
	return p.info, nil
}

// SetInfo replaces the project settings. Items recorded at another rate are
// resampled when the project is mixed.
func (p *Project) SetInfo(info ProjectInfo) error {
	if err := validateProjectInfo(info); err != nil {
		return opErr("SetInfo", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return opErr("SetInfo", ErrClosed)
	}
	for _, n := range p.itemNumbers() {
		if !fitsMix(p.items[n].info, info.SampFreq) {
			return opErr("SetInfo", fmt.Errorf("%w: item %d would end past %d frames at %d Hz", ErrInvalidParam, n, maxMixFrames, info.SampFreq))
		}
	}
	p.info = info
	return nil
}

// ItemCount returns the number of items in the project.
func (p *Project) ItemCount() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, opErr("ItemCount", ErrClosed)
	}
	return len(p.items), nil
}

// Items returns the numbers of all items in ascending order.
func (p *Project) Items() ([]int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, opErr("Items", ErrClosed)
	}
	return p.itemNumbers(), nil
}

// itemNumbers must be called with p.mu held.
func (p *Project) itemNumbers() []int {
	nums := make([]int, 0, len(p.items))
	for n := range p.items {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

func (p *Project) analyzer() (*analysis.Analyzer, error) {
	a, err := analysis.New(p.cfg.analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	return a, nil
}

func validateProjectInfo(info ProjectInfo) error {
	if info.SampFreq < minSampFreq || info.SampFreq > maxSampFreq {
		return fmt.Errorf("%w: sample rate must be in [%d, %d]: %d", ErrInvalidParam, minSampFreq, maxSampFreq, info.SampFreq)
	}
	if !inRange(info.MasterVolume, 0, maxVolume) {
		return fmt.Errorf("%w: master volume must be in [0, %g]: %g", ErrInvalidParam, maxVolume, info.MasterVolume)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func inRangeInt(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
