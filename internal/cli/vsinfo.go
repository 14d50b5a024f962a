package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vshift/internal/logging"
	"github.com/cwbudde/algo-vshift/vslib"
)

// ProjectExt is the extension of saved project files.
const ProjectExt = ".vsp"

// InfoOptions holds the vsinfo flags.
type InfoOptions struct {
	Format string // "text" | "yaml"
}

// InfoFormats lists the accepted output formats.
var InfoFormats = []string{"text", "yaml"}

// NewVSInfoCommand creates the vsinfo command.
func NewVSInfoCommand() *cobra.Command {
	opts := &InfoOptions{}

	cmd := &cobra.Command{
		Use:   "vsinfo <input.wav|project.vsp>",
		Short: "Summarize a wave file or saved project",
		Long: `Print item information and a control-point summary.

A wave file is analyzed as a single item of a fresh project. A project file
is loaded together with the wave files it references.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(InfoFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "parse flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, InfoFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|yaml)")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "parse flags", err)
	})

	return cmd
}

func runInfo(w io.Writer, opts *InfoOptions, path string) error {
	s, err := summarize(path)
	if err != nil {
		return err
	}

	if opts.Format == "yaml" {
		out, err := s.YAML()
		if err != nil {
			return WrapExitError(ExitFailure, "render summary", err)
		}
		_, err = w.Write(out)
		return err
	}
	return writeSummaryText(w, s)
}

// summarize loads path as a project file or a single-item project.
func summarize(path string) (vslib.Summary, error) {
	var (
		p   *vslib.Project
		err error
	)
	ephemeral := !strings.EqualFold(filepath.Ext(path), ProjectExt)

	if ephemeral {
		p = vslib.New(vslib.WithLogger(logging.Discard()))
		if _, err = p.AddItem(path); err != nil {
			p.Close()
			return vslib.Summary{}, WrapExitError(ExitFailure, "add item", err)
		}
	} else {
		p, err = vslib.Open(path, vslib.WithLogger(logging.Discard()))
		if err != nil {
			return vslib.Summary{}, WrapExitError(ExitFailure, "open project", err)
		}
	}
	defer p.Close()

	s, err := p.Summary()
	if err != nil {
		return vslib.Summary{}, WrapExitError(ExitFailure, "summarize project", err)
	}
	if ephemeral {
		s.ID = ""
	}
	return s, nil
}

func writeSummaryText(w io.Writer, s vslib.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if s.ID != "" {
		fmt.Fprintf(tw, "project:\t%s\n", s.ID)
	}
	fmt.Fprintf(tw, "sample rate:\t%d Hz\n", s.SampleRate)
	fmt.Fprintf(tw, "master volume:\t%g\n", s.MasterVolume)
	fmt.Fprintf(tw, "mix length:\t%d samples\n", s.MixSamples)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TRACK\tVOLUME\tPAN\tMUTE\tSOLO")
	for _, t := range s.Tracks {
		fmt.Fprintf(tw, "%d\t%g\t%g\t%t\t%t\n", t.Number, t.Volume, t.Pan, t.Mute, t.Solo)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ITEM\tFILE\tRATE\tCH\tSECONDS\tMODE\tTRACK\tOFFSET\tPOINTS\tVOICED\tEDITED\tPITCH MIN/MED/MAX")
	for _, it := range s.Items {
		pitch := "-"
		if it.Voiced > 0 {
			pitch = fmt.Sprintf("%d/%d/%d", it.PitchMin, it.PitchMedian, it.PitchMax)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.3f\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			it.Number, it.File, it.SampleRate, it.Channels, it.Seconds, it.SynthMode,
			it.Track, it.Offset, it.CtrlPntNum, it.Voiced, it.Edited, pitch)
	}

	return tw.Flush()
}
