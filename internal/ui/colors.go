package ui

import (
	"os"

	"github.com/fatih/color"
)

// ColorMode is an enum for determining whether color output is
// forced, suppressed, or left to the terminal default.
type ColorMode int

const (
	// ColorModeUndefined means no preference was expressed.
	ColorModeUndefined ColorMode = iota + 1
	// ColorModeSuppressed means color output is disabled.
	ColorModeSuppressed
	// ColorModeForced means color output is enabled regardless of tty.
	ColorModeForced
)

// GetColorModeFromEnv dereferences the FORCE_COLOR environment variable.
// The accepted values follow the supports-color NodeJS package: "0" to
// disable, and "1", "2", or "3" to force-enable color at the specified
// support level. We just treat things as on and off.
func GetColorModeFromEnv() ColorMode {
	switch forceColor := os.Getenv("FORCE_COLOR"); {
	case forceColor == "false" || forceColor == "0":
		return ColorModeSuppressed
	case forceColor == "true" || forceColor == "1" || forceColor == "2" || forceColor == "3":
		return ColorModeForced
	default:
		return ColorModeUndefined
	}
}

func applyColorMode(colorMode ColorMode) ColorMode {
	switch colorMode {
	case ColorModeForced:
		color.NoColor = false
	case ColorModeSuppressed:
		color.NoColor = true
	case ColorModeUndefined:
	default:
		// color.NoColor already gets its default value based on
		// isTTY and/or the presence of the NO_COLOR env variable.
	}

	if color.NoColor {
		return ColorModeSuppressed
	}
	return ColorModeForced
}
