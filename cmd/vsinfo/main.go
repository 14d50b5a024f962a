// Command vsinfo summarizes a wave file or a saved vsshift project.
//
// Usage:
//
//	vsinfo [--format text|yaml] <input.wav|project.vsp>
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-vshift/internal/cli"
)

func main() {
	if err := cli.NewVSInfoCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vsinfo: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
