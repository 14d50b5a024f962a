package vslib

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-vshift/internal/wavio"
)

// writeTone writes a 16-bit sine wave file and returns its path and the
// interleaved integer samples.
func writeTone(t *testing.T, dir, name string, freq float64, rate, frames, channels int) (string, []int) {
	t.Helper()

	data := make([]int, frames*channels)
	for i := range frames {
		v := int(math.Round(16000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))))
		for c := range channels {
			data[i*channels+c] = v
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, wavio.Write(path, rate, 16, channels, data))
	return path, data
}

func sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func newProjectT(t *testing.T, opts ...Option) *Project {
	t.Helper()
	p := New(opts...)
	t.Cleanup(func() { _ = p.Close() })
	return p
}
