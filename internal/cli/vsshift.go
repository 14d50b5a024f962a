package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-vshift/internal/config"
	"github.com/cwbudde/algo-vshift/internal/logging"
	"github.com/cwbudde/algo-vshift/vslib"
)

// ShiftOptions holds the vsshift flags.
type ShiftOptions struct {
	ConfigPath  string
	Cents       int
	Bits        int
	Channels    int
	Dither      string
	Mode        string
	SaveProject string
	Verbose     bool
}

// NewVSShiftCommand creates the vsshift command.
func NewVSShiftCommand() *cobra.Command {
	opts := &ShiftOptions{}

	cmd := &cobra.Command{
		Use:   "vsshift <in.wav> <out.wav>",
		Short: "Raise the pitch of a wave file",
		Long: `Import a wave file as a project item, add a fixed pitch offset to every
control point and export the mix as a PCM wave file.

With any number of arguments other than two, vsshift does nothing. A
flag it cannot parse counts as an argument.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, raw []string) error {
			if err := cmd.Flags().Parse(raw); err != nil {
				if positionalCount(cmd.Flags(), raw) != 2 {
					return nil
				}
				return WrapExitError(ExitCommandError, "parse flags", err)
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}

			args := cmd.Flags().Args()
			if len(args) != 2 {
				return nil
			}
			return runShift(cmd, opts, args[0], args[1])
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	f.IntVar(&opts.Cents, "cents", def.ShiftCents, "pitch offset in cents")
	f.IntVar(&opts.Bits, "bits", def.Export.Bits, "output bit depth (8|16|24|32)")
	f.IntVar(&opts.Channels, "channels", def.Export.Channels, "output channels (1|2)")
	f.StringVar(&opts.Dither, "dither", def.Export.Dither, "dither (none|rectangular|triangular)")
	f.StringVar(&opts.Mode, "mode", def.Synth.Mode, "synth mode (wsola|spectral)")
	f.StringVar(&opts.SaveProject, "save-project", "", "also save the edited project to this file")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log each step to stderr")
	f.BoolP("help", "h", false, "help for vsshift")

	return cmd
}

// positionalCount counts the arguments that are neither flags nor the
// separate value of a known flag. Unknown flags are assumed to take no
// value.
func positionalCount(fs *pflag.FlagSet, args []string) int {
	n := 0
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return n + len(args) - i - 1
		case len(a) > 1 && a[0] == '-':
			if strings.Contains(a, "=") {
				continue
			}
			name := strings.TrimLeft(a, "-")
			var f *pflag.Flag
			switch {
			case strings.HasPrefix(a, "--"):
				f = fs.Lookup(name)
			case len(name) == 1:
				f = fs.ShorthandLookup(name)
			}
			if f != nil && f.NoOptDefVal == "" {
				i++
			}
		default:
			n++
		}
	}
	return n
}

// resolveShiftConfig loads the configuration file and applies the flags
// that were set explicitly.
func resolveShiftConfig(cmd *cobra.Command, opts *ShiftOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("cents") {
		cfg.ShiftCents = opts.Cents
	}
	if f.Changed("bits") {
		cfg.Export.Bits = opts.Bits
	}
	if f.Changed("channels") {
		cfg.Export.Channels = opts.Channels
	}
	if f.Changed("dither") {
		cfg.Export.Dither = opts.Dither
	}
	if f.Changed("mode") {
		cfg.Synth.Mode = opts.Mode
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runShift(cmd *cobra.Command, opts *ShiftOptions, in, out string) error {
	cfg, err := resolveShiftConfig(cmd, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "configure logging", err)
	}

	projOpts, err := cfg.ProjectOptions(logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	exportOpts, err := cfg.ExportOptions()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	p := vslib.New(projOpts...)
	defer p.Close()
	logger.Debug("project opened", slog.String("project", p.ID().String()))

	if err := shiftFile(cmd.Context(), p, cfg, exportOpts, logger, in, out); err != nil {
		return err
	}

	if opts.SaveProject != "" {
		if err := p.Save(opts.SaveProject); err != nil {
			return WrapExitError(ExitFailure, "save project", err)
		}
	}

	if err := p.Close(); err != nil {
		return WrapExitError(ExitFailure, "close project", err)
	}
	return nil
}

// shiftFile adds in as an item, offsets every control point and exports
// the mix to out.
func shiftFile(ctx context.Context, p *vslib.Project, cfg config.Config, exportOpts []vslib.ExportOption,
	logger *slog.Logger, in, out string,
) error {
	n, err := p.AddItem(in)
	if err != nil {
		return WrapExitError(ExitFailure, "add item", err)
	}

	info, err := p.ItemInfo(n)
	if err != nil {
		return WrapExitError(ExitFailure, "read item info", err)
	}

	for i := range info.CtrlPntNum {
		cp, err := p.CtrlPnt(n, i)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("read control point %d", i), err)
		}
		cp.PitEdit = max(0, cp.PitEdit+cfg.ShiftCents)
		if err := p.SetCtrlPnt(n, i, cp); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("write control point %d", i), err)
		}
	}
	logger.Debug("control points shifted",
		slog.Int("item", n),
		slog.Int("ctrl_pnts", info.CtrlPntNum),
		slog.Int("cents", cfg.ShiftCents))

	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.ExportWaveFile(ctx, out, cfg.Export.Bits, cfg.Export.Channels, exportOpts...); err != nil {
		return WrapExitError(ExitFailure, "export wave", err)
	}
	return nil
}
