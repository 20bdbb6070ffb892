// Package cmdutil holds the state shared by every rcm subcommand:
// configuration, UI, logging, and workspace discovery.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/pflag"

	"github.com/rcm-dev/rcm/internal/config"
	"github.com/rcm-dev/rcm/internal/packagemanager"
	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/registry"
	"github.com/rcm-dev/rcm/internal/ui"
	"github.com/rcm-dev/rcm/internal/workspace"
)

// EnvLogLevel is the environment variable overriding the log level.
const EnvLogLevel = "RCM_LOG_LEVEL"

// Helper is passed to every subcommand's GetCmd. It carries the global
// flag values and builds a CmdBase on demand.
type Helper struct {
	// RcmVersion is the version of rcm driving the commands.
	RcmVersion string

	// UIFactory overrides UI construction; tests inject one.
	UIFactory ui.Factory

	// Runner executes package manager processes; tests substitute a fake.
	Runner packagemanager.CommandRunner

	verbosity    int
	noColor      bool
	offline      bool
	workspaceDir string
	configPath   string

	cleanups []io.Closer
}

// RegisterCleanup registers a closer to run when the process is done
// with its command.
func (h *Helper) RegisterCleanup(cleanup io.Closer) {
	h.cleanups = append(h.cleanups, cleanup)
}

// Cleanup runs all registered closers, logging failures to stderr.
func (h *Helper) Cleanup() {
	for _, cleanup := range h.cleanups {
		if err := cleanup.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed cleanup: %v\n", err)
		}
	}
}

// NewHelper returns a Helper for the given rcm version.
func NewHelper(version string) *Helper {
	return &Helper{
		RcmVersion: version,
		Runner:     packagemanager.RunCommand,
	}
}

// AddFlags registers the global flags on the root command's
// persistent flag set.
func (h *Helper) AddFlags(flags *pflag.FlagSet) {
	flags.CountVarP(&h.verbosity, "verbosity", "v", "verbosity of logging (use -v, -vv, or -vvv)")
	flags.BoolVar(&h.noColor, "no-color", false, "suppress colored output")
	flags.BoolVar(&h.offline, "offline", false, "skip all registry lookups")
	flags.StringVar(&h.workspaceDir, "workspace", "", "run as if started in this directory")
	flags.StringVar(&h.configPath, "config", "", "use this file as the workspace configuration")
}

// logLevel maps verbosity and the environment to an hclog level.
func (h *Helper) logLevel(configured string) hclog.Level {
	switch h.verbosity {
	case 0:
		// fall through to config / environment
	case 1:
		return hclog.Info
	case 2:
		return hclog.Debug
	default:
		return hclog.Trace
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		configured = env
	}
	if configured == "" {
		return hclog.Warn
	}
	if level := hclog.LevelFromString(configured); level != hclog.NoLevel {
		return level
	}
	return hclog.Warn
}

// GetCmdBase resolves the working directory, loads configuration, and
// constructs the shared command state.
func (h *Helper) GetCmdBase(flags *pflag.FlagSet) (*CmdBase, error) {
	cwd, err := rcmpath.GetCwd()
	if err != nil {
		return nil, err
	}
	if h.workspaceDir != "" {
		checked, ok := rcmpath.CheckedToAbsoluteSystemPath(h.workspaceDir)
		if !ok {
			checked = cwd.Join(h.workspaceDir)
		}
		cwd = checked
	}

	// Workspace-level config lives at the workspace root, which may be
	// an ancestor of the current directory.
	configRoot := cwd
	if root, found, findErr := workspace.Find(cwd); findErr == nil && found {
		configRoot = root
	}
	userFile, err := config.ReadUserConfigFile()
	if err != nil {
		return nil, err
	}
	var workspaceFile *config.File
	if h.configPath != "" {
		path, ok := rcmpath.CheckedToAbsoluteSystemPath(h.configPath)
		if !ok {
			path = cwd.Join(h.configPath)
		}
		workspaceFile, err = config.ReadConfigFile(path)
	} else {
		workspaceFile, err = config.ReadWorkspaceConfigFile(configRoot)
	}
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewWithFiles(configRoot, userFile, workspaceFile)
	if err != nil {
		return nil, err
	}
	if h.offline {
		cfg.Offline = true
	}
	if h.noColor {
		cfg.NoColor = true
	}

	factory := h.UIFactory
	if factory == nil {
		colorMode := ui.GetColorModeFromEnv()
		if cfg.NoColor {
			colorMode = ui.ColorModeSuppressed
		}
		factory = &ui.ColoredUiFactory{ColorMode: colorMode, Base: &ui.BasicUiFactory{}}
	}
	terminal := factory.Build(os.Stdin, os.Stdout, os.Stderr)
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "rcm",
		Level:  h.logLevel(cfg.LogLevel),
		Color:  hclog.AutoColor,
		Output: os.Stderr,
	})

	return &CmdBase{
		UI:         terminal,
		Logger:     logger,
		Config:     cfg,
		RcmVersion: h.RcmVersion,
		Cwd:        cwd,
		Runner:     h.Runner,
	}, nil
}

// CmdBase is the shared state for a single command execution.
type CmdBase struct {
	UI         cli.Ui
	Logger     hclog.Logger
	Config     *config.Config
	RcmVersion string
	Cwd        rcmpath.AbsoluteSystemPath
	Runner     packagemanager.CommandRunner
}

// LogWarning logs a warning and reports it to the UI.
func (b *CmdBase) LogWarning(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	b.Logger.Warn("warning", "error", err)
	b.UI.Warn(fmt.Sprintf("%s%v", ui.WarningPrefix, err))
}

// LogError logs an error and reports it to the UI.
func (b *CmdBase) LogError(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	b.Logger.Error("error", "error", err)
	b.UI.Error(fmt.Sprintf("%s%v", ui.ErrorPrefix, err))
}

// Workspace finds and opens the enclosing workspace.
func (b *CmdBase) Workspace() (*workspace.Workspace, error) {
	root, found, err := workspace.Find(b.Cwd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, workspace.ErrNotInitialized
	}
	return workspace.Open(root)
}

// Registry builds the registry client from the loaded configuration.
func (b *CmdBase) Registry() *registry.Client {
	return registry.NewClient(
		b.Config.Registries,
		b.Logger.Named("registry"),
		b.RcmVersion,
		b.Config.Timeout,
		b.Config.RetryAttempts,
		b.Config.Offline,
	)
}
