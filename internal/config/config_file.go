package config

import (
	"os"

	"github.com/adrg/xdg"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// File is a wrapper around one viper-backed configuration file. Both the
// per-user file and the per-workspace file share this shape.
type File struct {
	v    *viper.Viper
	path rcmpath.AbsoluteSystemPath
}

// Get returns the configured value for a dotted key, or nil.
func (f *File) Get(key string) interface{} {
	return f.v.Get(key)
}

// GetString returns the configured string value for a dotted key.
func (f *File) GetString(key string) string {
	return f.v.GetString(key)
}

// Set persists a value for a dotted key, creating the file if necessary.
func (f *File) Set(key string, value interface{}) error {
	// viper.Set would mask later merges, so merge instead.
	if err := f.v.MergeConfigMap(map[string]interface{}{key: value}); err != nil {
		return err
	}
	return f.write()
}

// All returns every configured key/value in this file.
func (f *File) All() map[string]interface{} {
	return f.v.AllSettings()
}

// Path returns the location of this file on disk.
func (f *File) Path() rcmpath.AbsoluteSystemPath {
	return f.path
}

// Delete removes the config file. The File shouldn't be used afterwards,
// it needs to be re-initialized.
func (f *File) Delete() error {
	return f.path.Remove()
}

func (f *File) write() error {
	if err := f.path.EnsureDir(); err != nil {
		return err
	}
	return f.v.WriteConfigAs(f.path.ToString())
}

// ReadConfigFile creates a File backed by the JSON file at path. The
// path does not need to exist yet.
func ReadConfigFile(path rcmpath.AbsoluteSystemPath) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path.ToString())
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &File{v: v, path: path}, nil
}

// DefaultUserConfigPath returns the default platform-dependent place that
// we store the user-specific configuration.
func DefaultUserConfigPath() rcmpath.AbsoluteSystemPath {
	configHome := xdg.ConfigHome
	if configHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			// Final fallback keeps the path workspace-local.
			return rcmpath.AbsoluteSystemPath(".rcm").Join("config.json")
		}
		return rcmpath.AbsoluteSystemPathFromUpstream(home).Join(".rcm", "config.json")
	}
	return rcmpath.AbsoluteSystemPathFromUpstream(configHome).Join("rcm", "config.json")
}

// ReadUserConfigFile creates a File pointing at the user-level
// configuration. The path or its parents do not need to exist; they are
// created on first write.
func ReadUserConfigFile() (*File, error) {
	return ReadConfigFile(DefaultUserConfigPath())
}

// GetWorkspaceConfigPath returns the location of the per-workspace
// configuration file.
func GetWorkspaceConfigPath(workspaceRoot rcmpath.AbsoluteSystemPath) rcmpath.AbsoluteSystemPath {
	return workspaceRoot.Join(".rcm", "config.json")
}

// ReadWorkspaceConfigFile creates a File pointing at the workspace-level
// configuration.
func ReadWorkspaceConfigFile(workspaceRoot rcmpath.AbsoluteSystemPath) (*File, error) {
	return ReadConfigFile(GetWorkspaceConfigPath(workspaceRoot))
}
