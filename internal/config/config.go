// Package config assembles rcm's layered configuration: built-in
// defaults, then the user config file, then the workspace config file,
// then RCM_* environment variables. Later layers win.
package config

import (
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// Default registry endpoints, keyed by manager slug.
const (
	_defaultCargoRegistry    = "https://crates.io"
	_defaultNpmRegistry      = "https://registry.npmjs.org"
	_defaultComposerRegistry = "https://packagist.org"
)

// Config is the fully resolved configuration for one invocation.
type Config struct {
	// ParallelJobs bounds manager fan-out for ensure/sync.
	ParallelJobs int
	// Timeout applies to each external tool or registry call.
	Timeout time.Duration
	// RetryAttempts is how many times registry calls are retried.
	RetryAttempts int
	// Offline disables all registry traffic.
	Offline bool
	// LogLevel is the hclog level name ("info" unless overridden).
	LogLevel string
	// NoColor suppresses ANSI output.
	NoColor bool
	// Registries maps a manager slug to its metadata endpoint.
	Registries map[string]string
	// CacheDir is where snapshots and scratch data live.
	CacheDir rcmpath.AbsoluteSystemPath

	userFile      *File
	workspaceFile *File
}

type envOverrides struct {
	ParallelJobs  int    `envconfig:"PARALLEL_JOBS"`
	Timeout       uint64 `envconfig:"TIMEOUT"`
	RetryAttempts int    `envconfig:"RETRIES"`
	Offline       bool   `envconfig:"OFFLINE"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	NoColor       bool   `envconfig:"NO_COLOR"`
	CargoRegistry string `envconfig:"CARGO_REGISTRY"`
	NpmRegistry   string `envconfig:"NPM_REGISTRY"`
	PhpRegistry   string `envconfig:"COMPOSER_REGISTRY"`
}

func defaults(workspaceRoot rcmpath.AbsoluteSystemPath) *Config {
	return &Config{
		ParallelJobs:  runtime.NumCPU(),
		Timeout:       300 * time.Second,
		RetryAttempts: 3,
		LogLevel:      "info",
		Registries: map[string]string{
			"cargo":    _defaultCargoRegistry,
			"npm":      _defaultNpmRegistry,
			"composer": _defaultComposerRegistry,
		},
		CacheDir: workspaceRoot.Join(".rcm", "cache"),
	}
}

// New resolves the configuration for a workspace rooted at workspaceRoot.
func New(workspaceRoot rcmpath.AbsoluteSystemPath) (*Config, error) {
	userFile, err := ReadUserConfigFile()
	if err != nil {
		return nil, errors.Wrap(err, "reading user config")
	}
	workspaceFile, err := ReadWorkspaceConfigFile(workspaceRoot)
	if err != nil {
		return nil, errors.Wrap(err, "reading workspace config")
	}
	return NewWithFiles(workspaceRoot, userFile, workspaceFile)
}

// NewWithFiles resolves the configuration from explicit file layers.
// Mostly useful to tests, which point the layers at scratch paths.
func NewWithFiles(workspaceRoot rcmpath.AbsoluteSystemPath, userFile *File, workspaceFile *File) (*Config, error) {
	cfg := defaults(workspaceRoot)

	cfg.userFile = userFile
	cfg.applyFile(userFile)

	cfg.workspaceFile = workspaceFile
	cfg.applyFile(workspaceFile)

	var env envOverrides
	if err := envconfig.Process("rcm", &env); err != nil {
		return nil, errors.Wrap(err, "invalid environment variable")
	}
	cfg.applyEnv(env)

	return cfg, nil
}

func (c *Config) applyFile(file *File) {
	if jobs := file.Get("core.paralleljobs"); jobs != nil {
		if n, ok := toInt(jobs); ok && n > 0 {
			c.ParallelJobs = n
		}
	}
	if timeout := file.Get("core.timeoutseconds"); timeout != nil {
		if n, ok := toInt(timeout); ok && n > 0 {
			c.Timeout = time.Duration(n) * time.Second
		}
	}
	if retries := file.Get("core.retryattempts"); retries != nil {
		if n, ok := toInt(retries); ok && n >= 0 {
			c.RetryAttempts = n
		}
	}
	if offline, ok := file.Get("core.offline").(bool); ok {
		c.Offline = offline
	}
	if level := file.GetString("core.loglevel"); level != "" {
		c.LogLevel = level
	}
	if noColor, ok := file.Get("ui.nocolor").(bool); ok {
		c.NoColor = noColor
	}
	for _, slug := range []string{"cargo", "npm", "composer"} {
		if url := file.GetString("registries." + slug); url != "" {
			c.Registries[slug] = url
		}
	}
	if dir := file.GetString("cache.dir"); dir != "" {
		c.CacheDir = rcmpath.AbsoluteSystemPathFromUpstream(dir)
	}
}

func (c *Config) applyEnv(env envOverrides) {
	if env.ParallelJobs > 0 {
		c.ParallelJobs = env.ParallelJobs
	}
	if env.Timeout > 0 {
		c.Timeout = time.Duration(env.Timeout) * time.Second
	}
	if env.RetryAttempts > 0 {
		c.RetryAttempts = env.RetryAttempts
	}
	if env.Offline {
		c.Offline = true
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.NoColor {
		c.NoColor = true
	}
	if env.CargoRegistry != "" {
		c.Registries["cargo"] = env.CargoRegistry
	}
	if env.NpmRegistry != "" {
		c.Registries["npm"] = env.NpmRegistry
	}
	if env.PhpRegistry != "" {
		c.Registries["composer"] = env.PhpRegistry
	}
}

// WorkspaceFile exposes the workspace-level file for the config command.
func (c *Config) WorkspaceFile() *File {
	return c.workspaceFile
}

// UserFile exposes the user-level file for the config command.
func (c *Config) UserFile() *File {
	return c.userFile
}

// toInt normalizes the numeric types viper may hand back from JSON.
func toInt(value interface{}) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
