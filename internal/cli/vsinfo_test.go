package cli

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-vshift/vslib"
)

func TestVSInfoCommand(t *testing.T) {
	cmd := NewVSInfoCommand()
	assert.Equal(t, "vsinfo", cmd.Name())

	f := cmd.Flags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "text", f.DefValue)
}

func TestVSInfoYAMLGolden(t *testing.T) {
	in := writeWave(t, t.TempDir(), "silence.wav", 0, 0, 16000, 8000)

	stdout, _, err := execute(NewVSInfoCommand(), "--format", "yaml", in)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "vsinfo_silence", []byte(stdout))
}

func TestVSInfoTone(t *testing.T) {
	in := writeWave(t, t.TempDir(), "tone.wav", 400, 0.5, 16000, 8000)

	stdout, _, err := execute(NewVSInfoCommand(), "--format", "yaml", in)
	require.NoError(t, err)

	var s vslib.Summary
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &s))
	assert.Empty(t, s.ID, "a wave file has no persistent project")
	require.Len(t, s.Items, 1)

	it := s.Items[0]
	assert.Equal(t, "tone.wav", it.File)
	assert.Equal(t, 50, it.CtrlPntNum)
	assert.Greater(t, it.Voiced, 40)
	assert.Equal(t, 6735, it.PitchMedian)
	assert.Zero(t, it.Edited)
}

func TestVSInfoText(t *testing.T) {
	in := writeWave(t, t.TempDir(), "tone.wav", 400, 0.5, 16000, 8000)

	stdout, _, err := execute(NewVSInfoCommand(), in)
	require.NoError(t, err)

	assert.NotContains(t, stdout, "project:")
	assert.Contains(t, stdout, "sample rate:")
	assert.Contains(t, stdout, "16000 Hz")
	assert.Contains(t, stdout, "TRACK")
	assert.Contains(t, stdout, "tone.wav")
	assert.Contains(t, stdout, "0.500")
	assert.Contains(t, stdout, "wsola")
}

func TestVSInfoSavedProject(t *testing.T) {
	dir := t.TempDir()
	in := writeWave(t, dir, "voice.wav", 300, 0.5, 16000, 8000)
	proj := filepath.Join(dir, "voice.vsp")

	_, _, err := execute(NewVSShiftCommand(), "--save-project", proj, in, filepath.Join(dir, "out.wav"))
	require.NoError(t, err)

	stdout, _, err := execute(NewVSInfoCommand(), "--format=yaml", proj)
	require.NoError(t, err)

	var s vslib.Summary
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &s))
	assert.NotEmpty(t, s.ID)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "voice.wav", s.Items[0].File)
	assert.Equal(t, s.Items[0].CtrlPntNum, s.Items[0].Edited, "every point was shifted")

	stdout, _, err = execute(NewVSInfoCommand(), proj)
	require.NoError(t, err)
	assert.Contains(t, stdout, "project:")
	assert.Contains(t, stdout, s.ID)
}

func TestVSInfoErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeWave(t, dir, "tone.wav", 400, 0.5, 16000, 1600)

	tests := []struct {
		name string
		args []string
		step string
		code int
	}{
		{name: "bad format", args: []string{"--format", "json", in}, step: "parse flags", code: ExitCommandError},
		{name: "missing wave", args: []string{filepath.Join(dir, "missing.wav")}, step: "add item", code: ExitFailure},
		{name: "missing project", args: []string{filepath.Join(dir, "missing.vsp")}, step: "open project", code: ExitFailure},
		{name: "unknown flag", args: []string{"--width", "3", in}, step: "parse flags", code: ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(NewVSInfoCommand(), tt.args...)
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.step, exitErr.Step)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}

	_, _, err := execute(NewVSInfoCommand())
	require.Error(t, err, "vsinfo takes exactly one argument")
}
