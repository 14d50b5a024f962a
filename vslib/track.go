package vslib

import "fmt"

// TrackInfo returns the settings of track n.
func (p *Project) TrackInfo(n int) (TrackInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return TrackInfo{}, opErr("TrackInfo", ErrClosed)
	}
	t, ok := p.tracks[n]
	if !ok {
		return TrackInfo{}, opErr("TrackInfo", fmt.Errorf("%w: %d", ErrTrackNotFound, n))
	}
	return t, nil
}

// SetTrackInfo replaces the settings of an existing track.
func (p *Project) SetTrackInfo(n int, t TrackInfo) error {
	switch {
	case !inRange(t.Volume, 0, maxVolume):
		return opErr("SetTrackInfo", fmt.Errorf("%w: volume must be in [0, %g]: %g", ErrInvalidParam, maxVolume, t.Volume))
	case !inRange(t.Pan, -1, 1):
		return opErr("SetTrackInfo", fmt.Errorf("%w: pan must be in [-1, 1]: %g", ErrInvalidParam, t.Pan))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return opErr("SetTrackInfo", ErrClosed)
	}
	if _, ok := p.tracks[n]; !ok {
		return opErr("SetTrackInfo", fmt.Errorf("%w: %d", ErrTrackNotFound, n))
	}
	p.tracks[n] = t
	return nil
}

// audible reports whether items on track n are mixed. With any track soloed
// only soloed tracks play. Must be called with p.mu held.
func (p *Project) audible(n int, anySolo bool) bool {
	t := p.tracks[n]
	if t.Mute {
		return false
	}
	return !anySolo || t.Solo
}

func (p *Project) anySolo() bool {
	for _, t := range p.tracks {
		if t.Solo {
			return true
		}
	}
	return false
}
