package vslib

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-vshift/internal/wavio"
)

// ExportWaveFile renders the whole mix and writes it to path as a PCM wave
// at the project sample rate. bits is 8, 16, 24 or 32 and channels is 1 or
// 2. Without options the mix is rounded without dither.
func (p *Project) ExportWaveFile(ctx context.Context, path string, bits, channels int, opts ...ExportOption) error {
	if err := validateOutput(bits, channels); err != nil {
		return opErr("ExportWaveFile", err)
	}

	mix, rate, err := p.mix(ctx, channels)
	if err != nil {
		return opErr("ExportWaveFile", err)
	}

	frames := 0
	if len(mix) > 0 {
		frames = len(mix[0])
	}
	if frames == 0 {
		return opErr("ExportWaveFile", fmt.Errorf("%w: project has nothing to mix", ErrWaveEmpty))
	}

	data, err := quantize(mix, bits, 0, frames, opts)
	if err != nil {
		return opErr("ExportWaveFile", err)
	}

	if err := wavio.Write(path, rate, bits, channels, data); err != nil {
		return opErr("ExportWaveFile", fmt.Errorf("%w: %w", ErrWaveExport, err))
	}

	p.logger.Debug("export written",
		slog.String("file", path),
		slog.Int("samples", frames),
		slog.Int("bits", bits),
		slog.Int("channels", channels),
		slog.Int("sample_rate", rate))
	return nil
}
