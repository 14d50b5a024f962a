package cli

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-vshift/internal/wavio"
)

// writeWave writes a mono 16-bit wave of amp*sin(freq) and returns its path.
func writeWave(t *testing.T, dir, name string, freq, amp float64, rate, frames int) string {
	t.Helper()

	data := make([]int, frames)
	for i := range data {
		data[i] = int(math.Round(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, wavio.Write(path, rate, 16, 1, data))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
