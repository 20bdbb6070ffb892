package cmdutil

import (
	"io"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/workspace"
)

type mockUiFactory struct {
	ui *cli.MockUi
}

func (f *mockUiFactory) Build(in io.Reader, out io.Writer, err io.Writer) cli.Ui {
	return f.ui
}

func newTestHelper(t *testing.T) (*Helper, *pflag.FlagSet) {
	t.Helper()
	flags := pflag.NewFlagSet("test-flags", pflag.ContinueOnError)
	h := NewHelper("test-version")
	h.AddFlags(flags)
	h.UIFactory = &mockUiFactory{ui: cli.NewMockUi()}
	return h, flags
}

func TestVerbosityMapsToLogLevel(t *testing.T) {
	for verbosity, want := range map[int]hclog.Level{
		1: hclog.Info,
		2: hclog.Debug,
		3: hclog.Trace,
		5: hclog.Trace,
	} {
		h := &Helper{verbosity: verbosity}
		assert.Equal(t, want, h.logLevel("error"), "verbosity %d", verbosity)
	}
}

func TestLogLevelFallsBackToEnvThenConfig(t *testing.T) {
	h := &Helper{}
	assert.Equal(t, hclog.Warn, h.logLevel(""))
	assert.Equal(t, hclog.Debug, h.logLevel("debug"))

	t.Setenv(EnvLogLevel, "trace")
	assert.Equal(t, hclog.Trace, h.logLevel("debug"))
}

func TestGetCmdBaseHonorsWorkspaceFlag(t *testing.T) {
	dir := t.TempDir()
	h, flags := newTestHelper(t)
	assert.NoError(t, flags.Set("workspace", dir))

	base, err := h.GetCmdBase(flags)
	assert.NoError(t, err)
	assert.Equal(t, rcmpath.AbsoluteSystemPathFromUpstream(dir), base.Cwd)
	assert.Equal(t, "test-version", base.RcmVersion)
}

func TestGetCmdBaseOfflineFlag(t *testing.T) {
	dir := t.TempDir()
	h, flags := newTestHelper(t)
	assert.NoError(t, flags.Set("workspace", dir))
	assert.NoError(t, flags.Set("offline", "true"))

	base, err := h.GetCmdBase(flags)
	assert.NoError(t, err)
	assert.True(t, base.Config.Offline)
}

func TestWorkspaceRequiresManifest(t *testing.T) {
	dir := t.TempDir()
	h, flags := newTestHelper(t)
	assert.NoError(t, flags.Set("workspace", dir))

	base, err := h.GetCmdBase(flags)
	assert.NoError(t, err)

	_, err = base.Workspace()
	assert.ErrorIs(t, err, workspace.ErrNotInitialized)
}

func TestWorkspaceOpensFromSubdirectory(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	_, err := workspace.InitAt(root, []string{"cargo"}, "")
	assert.NoError(t, err)
	nested := root.Join("src", "deep")
	assert.NoError(t, nested.MkdirAll())

	h, flags := newTestHelper(t)
	assert.NoError(t, flags.Set("workspace", nested.ToString()))

	base, err := h.GetCmdBase(flags)
	assert.NoError(t, err)

	ws, err := base.Workspace()
	assert.NoError(t, err)
	assert.Equal(t, root, ws.Root)
}

func TestErrorUnwraps(t *testing.T) {
	inner := workspace.ErrNotInitialized
	err := &Error{ExitCode: 3, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, inner.Error(), err.Error())
}
