package packagemanager

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// PackageJSON is the subset of package.json that rcm reads.
type PackageJSON struct {
	Name            string            `json:"name,omitempty"`
	Workspaces      []string          `json:"workspaces,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

func readPackageJSON(root rcmpath.AbsoluteSystemPath) (*PackageJSON, error) {
	bytes, err := root.Join("package.json").ReadFile()
	if err != nil {
		return nil, errors.Wrap(err, "reading package.json")
	}
	var pkg PackageJSON
	if err := json.Unmarshal(bytes, &pkg); err != nil {
		return nil, errors.Wrap(err, "parsing package.json")
	}
	return &pkg, nil
}

var nodejsNpm = PackageManager{
	Name:       "nodejs npm",
	Slug:       "npm",
	Command:    "npm",
	Specfile:   "package.json",
	Lockfile:   "package-lock.json",
	PackageDir: "node_modules",

	versionArgs: []string{"--version"},

	addArgs: func(pkg string, version string, dev bool) []string {
		spec := pkg
		if version != "" && version != "latest" {
			spec = pkg + "@" + version
		}
		args := []string{"install", spec}
		if dev {
			args = append(args, "--save-dev")
		} else {
			args = append(args, "--save")
		}
		return args
	},

	removeArgs: func(pkg string) []string {
		return []string{"uninstall", pkg}
	},

	syncArgs:   []string{"install"},
	updateArgs: []string{"update"},

	detect: func(projectDirectory rcmpath.AbsoluteSystemPath, packageManager *PackageManager) (bool, error) {
		return projectDirectory.Join(packageManager.Specfile).FileExists(), nil
	},

	getWorkspaceGlobs: func(rootpath rcmpath.AbsoluteSystemPath) ([]string, error) {
		pkg, err := readPackageJSON(rootpath)
		if err != nil {
			return nil, err
		}
		if len(pkg.Workspaces) == 0 {
			return nil, errors.New("package.json: no workspaces found")
		}
		return pkg.Workspaces, nil
	},

	countDependencies: func(rootpath rcmpath.AbsoluteSystemPath) (int, error) {
		pkg, err := readPackageJSON(rootpath)
		if err != nil {
			return 0, err
		}
		return len(pkg.Dependencies) + len(pkg.DevDependencies), nil
	},
}
