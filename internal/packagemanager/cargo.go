package packagemanager

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// CargoManifest is the subset of Cargo.toml that rcm reads.
type CargoManifest struct {
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Dependencies    map[string]interface{} `toml:"dependencies"`
	DevDependencies map[string]interface{} `toml:"dev-dependencies"`
}

func readCargoManifest(root rcmpath.AbsoluteSystemPath) (*CargoManifest, error) {
	bytes, err := root.Join("Cargo.toml").ReadFile()
	if err != nil {
		return nil, errors.Wrap(err, "reading Cargo.toml")
	}
	var manifest CargoManifest
	if err := toml.Unmarshal(bytes, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing Cargo.toml")
	}
	return &manifest, nil
}

var cargo = PackageManager{
	Name:       "Rust cargo",
	Slug:       "cargo",
	Command:    "cargo",
	Specfile:   "Cargo.toml",
	Lockfile:   "Cargo.lock",
	PackageDir: "target",

	versionArgs: []string{"--version"},

	addArgs: func(pkg string, version string, dev bool) []string {
		args := []string{"add", pkg}
		if version != "" && version != "latest" {
			args = []string{"add", pkg + "@" + version}
		}
		if dev {
			args = append(args, "--dev")
		}
		return args
	},

	removeArgs: func(pkg string) []string {
		return []string{"remove", pkg}
	},

	syncArgs:   []string{"fetch"},
	updateArgs: []string{"update"},
	cleanArgs:  []string{"clean"},

	detect: func(projectDirectory rcmpath.AbsoluteSystemPath, packageManager *PackageManager) (bool, error) {
		return projectDirectory.Join(packageManager.Specfile).FileExists(), nil
	},

	getWorkspaceGlobs: func(rootpath rcmpath.AbsoluteSystemPath) ([]string, error) {
		manifest, err := readCargoManifest(rootpath)
		if err != nil {
			return nil, err
		}
		if len(manifest.Workspace.Members) == 0 {
			return nil, errors.New("Cargo.toml: no workspace members found")
		}
		return manifest.Workspace.Members, nil
	},

	countDependencies: func(rootpath rcmpath.AbsoluteSystemPath) (int, error) {
		manifest, err := readCargoManifest(rootpath)
		if err != nil {
			return 0, err
		}
		return len(manifest.Dependencies) + len(manifest.DevDependencies), nil
	},
}
