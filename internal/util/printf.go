package util

import (
	"fmt"
	"io"
	"os"

	"github.com/rcm-dev/rcm/internal/ui"
)

// InitPrintf sets up the replacements used by printf.
func InitPrintf() {
	if !ui.IsTTY {
		replacements = map[string]string{}
	}
}

// Sprintf formats a string with some replacements for pseudo-shell
// variables for ANSI formatting codes.
func Sprintf(format string, args ...interface{}) string {
	return os.Expand(fmt.Sprintf(format, args...), replace)
}

// Printf prints something to stderr with the pseudo-shell replacements.
func Printf(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, os.Expand(fmt.Sprintf(format, args...), replace))
}

// Fprintf prints something to the given writer with the pseudo-shell replacements.
func Fprintf(writer io.Writer, format string, args ...interface{}) {
	fmt.Fprint(writer, os.Expand(fmt.Sprintf(format, args...), replace))
}

func replace(s string) string {
	return replacements[s]
}

// These are the standard set of replacements we use.
var replacements = map[string]string{
	"BOLD":        "\x1b[1m",
	"BOLD_RED":    "\x1b[31;1m",
	"BOLD_GREEN":  "\x1b[32;1m",
	"BOLD_YELLOW": "\x1b[33;1m",
	"BOLD_CYAN":   "\x1b[36;1m",
	"UNDERLINE":   "\x1b[4m",
	"GREY":        "\x1b[2m",
	"RED":         "\x1b[31m",
	"GREEN":       "\x1b[32m",
	"YELLOW":      "\x1b[33m",
	"BLUE":        "\x1b[34m",
	"MAGENTA":     "\x1b[35m",
	"CYAN":        "\x1b[36m",
	"RESET":       "\x1b[0m",
}
