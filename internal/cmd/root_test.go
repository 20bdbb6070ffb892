package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/cmdutil"
)

func TestRootRegistersSubcommands(t *testing.T) {
	helper := cmdutil.NewHelper("test-version")
	root := getCmd(helper, &profileOpts{})

	registered := map[string]bool{}
	for _, sub := range root.Commands() {
		registered[sub.Name()] = true
	}
	for _, name := range []string{
		"init", "add", "remove", "ensure", "plan", "apply",
		"snapshot", "sbom", "provenance", "workspace", "config", "let",
	} {
		assert.True(t, registered[name], "missing subcommand %v", name)
	}
}

func TestVersionFlagExitsZero(t *testing.T) {
	assert.Equal(t, 0, RunWithArgs([]string{"--version"}, "9.9.9"))
}

func TestUnknownCommandExitsNonZero(t *testing.T) {
	assert.Equal(t, 1, RunWithArgs([]string{"no-such-command"}, "test-version"))
}
