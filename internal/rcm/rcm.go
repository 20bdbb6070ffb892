// Package rcm is the stable boundary between process entry points and
// the command implementation. Front-ends hand an argument vector to Run
// and report its result as the process exit status.
package rcm

import "github.com/rcm-dev/rcm/internal/cmd"

// RcmVersion is stamped at build time with -ldflags. An empty value
// means the build carried no version information.
var RcmVersion = "1.2.0"

// Version returns the build's version string, or "" when the build
// carried none.
func Version() string {
	return RcmVersion
}

// Run executes the command named by the argument vector and returns the
// process exit status. The first token is the program name and is not
// interpreted; front-ends may pass any placeholder there.
func Run(args []string) int {
	if len(args) == 0 {
		args = []string{"rcm", "--help"}
	}
	return cmd.RunWithArgs(args[1:], RcmVersion)
}
