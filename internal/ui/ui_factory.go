package ui

import (
	"io"

	"github.com/fatih/color"
	"github.com/mitchellh/cli"
)

// Factory provides an interface for creating cli.Ui instances from input, output and error IOs
type Factory interface {
	Build(in io.Reader, out io.Writer, err io.Writer) cli.Ui
}

// BasicUiFactory provides a method for creating a cli.BasicUi from input, output and error IOs
type BasicUiFactory struct {
}

// Build builds a cli.BasicUi from input, output and error IOs
func (factory *BasicUiFactory) Build(in io.Reader, out io.Writer, err io.Writer) cli.Ui {
	return &cli.BasicUi{
		Reader:      in,
		Writer:      out,
		ErrorWriter: err,
	}
}

// ColoredUiFactory provides a method for creating a cli.ColoredUi from input, output and error IOs
type ColoredUiFactory struct {
	ColorMode ColorMode
	Base      Factory
}

// Build builds a cli.ColoredUi from input, output and error IOs
func (factory *ColoredUiFactory) Build(in io.Reader, out io.Writer, err io.Writer) cli.Ui {
	factory.ColorMode = applyColorMode(factory.ColorMode)

	var outWriter, errWriter io.Writer

	if factory.ColorMode == ColorModeSuppressed {
		outWriter = &stripAnsiWriter{wrappedWriter: out}
		errWriter = &stripAnsiWriter{wrappedWriter: err}
	} else {
		outWriter = out
		errWriter = err
	}

	return &cli.ColoredUi{
		Ui:          factory.Base.Build(in, outWriter, errWriter),
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		WarnColor:   cli.UiColor{Code: int(color.FgYellow), Bold: false},
		ErrorColor:  cli.UiColorRed,
	}
}
