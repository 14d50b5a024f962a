// Command vsshift raises the pitch of a wave file by 100 cents.
//
// Usage:
//
//	vsshift [flags] <in.wav> <out.wav>
//
// The input is imported as a project item, every control point's edited
// pitch is offset and the mix is exported as a 16-bit stereo wave. Called
// with any other number of arguments it does nothing and exits 0.
//
// Examples:
//
//	vsshift voice.wav voice_up.wav
//	vsshift --cents=-200 --bits 24 voice.wav voice_down.wav
//	vsshift --config vsshift.yaml --save-project voice.vsp voice.wav out.wav
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-vshift/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.NewVSShiftCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "vsshift: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
