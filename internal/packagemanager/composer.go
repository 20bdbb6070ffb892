package packagemanager

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// ComposerJSON is the subset of composer.json that rcm reads.
type ComposerJSON struct {
	Name       string            `json:"name,omitempty"`
	Require    map[string]string `json:"require,omitempty"`
	RequireDev map[string]string `json:"require-dev,omitempty"`
}

func readComposerJSON(root rcmpath.AbsoluteSystemPath) (*ComposerJSON, error) {
	bytes, err := root.Join("composer.json").ReadFile()
	if err != nil {
		return nil, errors.Wrap(err, "reading composer.json")
	}
	var pkg ComposerJSON
	if err := json.Unmarshal(bytes, &pkg); err != nil {
		return nil, errors.Wrap(err, "parsing composer.json")
	}
	return &pkg, nil
}

var phpComposer = PackageManager{
	Name:       "php composer",
	Slug:       "composer",
	Command:    "composer",
	Specfile:   "composer.json",
	Lockfile:   "composer.lock",
	PackageDir: "vendor",

	versionArgs: []string{"--version"},

	addArgs: func(pkg string, version string, dev bool) []string {
		spec := pkg
		if version != "" && version != "latest" {
			spec = pkg + ":" + version
		}
		args := []string{"require", spec}
		if dev {
			args = append(args, "--dev")
		}
		return args
	},

	removeArgs: func(pkg string) []string {
		return []string{"remove", pkg}
	},

	syncArgs:   []string{"install"},
	updateArgs: []string{"update"},

	detect: func(projectDirectory rcmpath.AbsoluteSystemPath, packageManager *PackageManager) (bool, error) {
		return projectDirectory.Join(packageManager.Specfile).FileExists(), nil
	},

	countDependencies: func(rootpath rcmpath.AbsoluteSystemPath) (int, error) {
		pkg, err := readComposerJSON(rootpath)
		if err != nil {
			return 0, err
		}
		count := len(pkg.Require) + len(pkg.RequireDev)
		// "php" and extension constraints live in require but are not
		// packages.
		for name := range pkg.Require {
			if name == "php" {
				count--
			}
		}
		return count, nil
	},
}
