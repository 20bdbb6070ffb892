package ui

import (
	"strings"
	"testing"

	gatedio "github.com/hashicorp/go-gatedio"
	"github.com/stretchr/testify/assert"
)

func TestStripAnsi(t *testing.T) {
	assert.Equal(t, "loud", StripAnsi("\x1b[1mloud\x1b[0m"))
	assert.Equal(t, "plain", StripAnsi("plain"))
}

func TestSuppressedFactoryStripsColor(t *testing.T) {
	out := gatedio.NewByteBuffer()
	errOut := gatedio.NewByteBuffer()
	factory := &ColoredUiFactory{
		ColorMode: ColorModeSuppressed,
		Base:      &BasicUiFactory{},
	}

	terminal := factory.Build(strings.NewReader(""), out, errOut)
	terminal.Output("\x1b[32mgreen\x1b[0m text")

	assert.Equal(t, "green text\n", out.String())
}

func TestForcedFactoryKeepsColor(t *testing.T) {
	out := gatedio.NewByteBuffer()
	factory := &ColoredUiFactory{
		ColorMode: ColorModeForced,
		Base:      &BasicUiFactory{},
	}

	terminal := factory.Build(strings.NewReader(""), out, gatedio.NewByteBuffer())
	terminal.Output("\x1b[32mgreen\x1b[0m")

	assert.Contains(t, out.String(), "\x1b[32m")
}
