package vslib

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	p := newProjectT(t)

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, ProjectInfo{MasterVolume: 1, SampFreq: 44100}, info)

	n, err := p.ItemCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	track, err := p.TrackInfo(0)
	require.NoError(t, err)
	assert.Equal(t, TrackInfo{Volume: 1}, track)

	assert.NotEqual(t, [16]byte{}, [16]byte(p.ID()))
}

func TestSetInfoValidation(t *testing.T) {
	p := newProjectT(t)

	tests := []struct {
		name    string
		info    ProjectInfo
		wantErr bool
	}{
		{name: "valid", info: ProjectInfo{MasterVolume: 0.5, SampFreq: 48000}},
		{name: "silent master", info: ProjectInfo{MasterVolume: 0, SampFreq: 8000}},
		{name: "rate too low", info: ProjectInfo{MasterVolume: 1, SampFreq: 4000}, wantErr: true},
		{name: "rate too high", info: ProjectInfo{MasterVolume: 1, SampFreq: 384000}, wantErr: true},
		{name: "volume too high", info: ProjectInfo{MasterVolume: 5, SampFreq: 44100}, wantErr: true},
		{name: "negative volume", info: ProjectInfo{MasterVolume: -1, SampFreq: 44100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetInfo(tt.info)
			if !tt.wantErr {
				require.NoError(t, err)
				got, err := p.Info()
				require.NoError(t, err)
				assert.Equal(t, tt.info, got)
				return
			}

			require.ErrorIs(t, err, ErrInvalidParam)
			var opErr *OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, "SetInfo", opErr.Op)
		})
	}
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	p := New()
	_, err := p.AddItemSamples("a", 16000, [][]float64{sine(200, 16000, 1600)})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Info()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.ItemCount()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.ItemInfo(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.CtrlPnt(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.AddItemSamples("b", 16000, [][]float64{sine(200, 16000, 1600)})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.AddItem("missing.wav")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.MixSample()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.RemoveItem(0), ErrClosed)
	assert.ErrorIs(t, p.SetTrackInfo(0, TrackInfo{Volume: 1}), ErrClosed)
	assert.ErrorIs(t, p.Save(t.TempDir()+"/x.vsp"), ErrClosed)
}

func TestConcurrentEditing(t *testing.T) {
	p := newProjectT(t)
	n, err := p.AddItemSamples("tone", 16000, [][]float64{sine(220, 16000, 16000)})
	require.NoError(t, err)

	info, err := p.ItemInfo(n)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < info.CtrlPntNum; i += 4 {
				cp, err := p.CtrlPnt(n, i)
				if err != nil {
					t.Error(err)
					return
				}
				cp.Volume = 0.5
				if err := p.SetCtrlPnt(n, i, cp); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for i := range info.CtrlPntNum {
		cp, err := p.CtrlPnt(n, i)
		require.NoError(t, err)
		require.Equal(t, 0.5, cp.Volume)
	}
}

func TestFreq2Cent(t *testing.T) {
	tests := []struct {
		hz   float64
		want int
	}{
		{hz: 440, want: 6900},
		{hz: 220, want: 5700},
		{hz: 880, want: 8100},
		{hz: 261.6256, want: 6000},
		{hz: 466.1638, want: 7000},
		{hz: 0, want: 0},
		{hz: -10, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Freq2Cent(tt.hz), "Freq2Cent(%v)", tt.hz)
	}

	assert.InDelta(t, 440, Cent2Freq(6900), 1e-12)
	assert.InDelta(t, 880, Cent2Freq(8100), 1e-9)
	for _, c := range []int{3000, 5700, 6901, 9000} {
		assert.Equal(t, c, Freq2Cent(Cent2Freq(c)))
	}
}

func TestParseSynthMode(t *testing.T) {
	m, err := ParseSynthMode("spectral")
	require.NoError(t, err)
	assert.Equal(t, SynthSpectral, m)
	assert.Equal(t, "spectral", m.String())

	m, err = ParseSynthMode("wsola")
	require.NoError(t, err)
	assert.Equal(t, SynthWSOLA, m)

	_, err = ParseSynthMode("granular")
	assert.ErrorIs(t, err, ErrInvalidParam)
}
