package vslib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSummary(t *testing.T) {
	p := newProjectT(t)
	n, err := p.AddItemSamples("dir/tone.wav", 16000, [][]float64{sine(400, 16000, 8000)})
	require.NoError(t, err)

	cp, err := p.CtrlPnt(n, 25)
	require.NoError(t, err)
	cp.PitEdit += 100
	require.NoError(t, p.SetCtrlPnt(n, 25, cp))

	s, err := p.Summary()
	require.NoError(t, err)

	assert.Equal(t, p.ID().String(), s.ID)
	assert.Equal(t, 16000, s.SampleRate)
	assert.Equal(t, 8000, s.MixSamples)
	require.Len(t, s.Tracks, 1)
	require.Len(t, s.Items, 1)

	it := s.Items[0]
	assert.Equal(t, "tone.wav", it.File)
	assert.Equal(t, 0.5, it.Seconds)
	assert.Equal(t, 50, it.CtrlPntNum)
	assert.Equal(t, "wsola", it.SynthMode)
	assert.Equal(t, 1, it.Edited)
	assert.Greater(t, it.Voiced, 40)
	assert.Equal(t, 6735, it.PitchMedian, "400 Hz is a 40 sample period")

	out, err := s.YAML()
	require.NoError(t, err)

	var back Summary
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, s, back)
}
