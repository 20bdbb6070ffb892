package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rcm-dev/rcm/internal/rcm"
)

const programLabel = "RCM CLI"

// Swapped out by tests.
var (
	runLib               = rcm.Run
	libVersion           = rcm.Version
	stdout     io.Writer = os.Stdout
)

// run dispatches one process invocation. A bare invocation prints the
// version banner and behaves as if the user asked for --help; anything
// else is forwarded untouched.
func run(args []string) int {
	if len(args) <= 1 {
		version := libVersion()
		if version == "" {
			version = "unknown"
		}
		fmt.Fprintf(stdout, "%v - %v\n", programLabel, version)
		return runLib([]string{"rcm", "--help"})
	}
	return runLib(args)
}

func main() {
	os.Exit(run(os.Args))
}
