package packagemanager

import (
	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/util"
)

// systemTool describes one host package manager rcm knows how to drive.
type systemTool struct {
	command     string
	installArgs []string
	removeArgs  []string
	updateArgs  []string
	versionArgs []string
}

// Probe order matters: apt-get before brew so Linuxbrew hosts still get
// the native tool.
var systemTools = []systemTool{
	{"apt-get", []string{"install", "-y"}, []string{"remove", "-y"}, []string{"upgrade", "-y"}, []string{"--version"}},
	{"dnf", []string{"install", "-y"}, []string{"remove", "-y"}, []string{"upgrade", "-y"}, []string{"--version"}},
	{"yum", []string{"install", "-y"}, []string{"remove", "-y"}, []string{"update", "-y"}, []string{"--version"}},
	{"pacman", []string{"-S", "--noconfirm"}, []string{"-R", "--noconfirm"}, []string{"-Syu", "--noconfirm"}, []string{"--version"}},
	{"apk", []string{"add"}, []string{"del"}, []string{"upgrade"}, []string{"--version"}},
	{"brew", []string{"install"}, []string{"uninstall"}, []string{"upgrade"}, []string{"--version"}},
	{"choco", []string{"install", "-y"}, []string{"uninstall", "-y"}, []string{"upgrade", "all", "-y"}, []string{"--version"}},
}

// systemCommand returns the first host package manager found on PATH,
// or the empty string when none is available.
func systemCommand() string {
	for _, tool := range systemTools {
		if util.CommandExists(tool.command) {
			return tool.command
		}
	}
	return ""
}

func currentSystemTool() *systemTool {
	command := systemCommand()
	for i := range systemTools {
		if systemTools[i].command == command {
			return &systemTools[i]
		}
	}
	return nil
}

var system = PackageManager{
	Name:    "system packages",
	Slug:    "system",
	Command: "",

	versionArgs: []string{"--version"},

	addArgs: func(pkg string, version string, dev bool) []string {
		tool := currentSystemTool()
		if tool == nil {
			return nil
		}
		// Host package managers pin versions through their own repos;
		// the requested version is recorded in the manifest only.
		return append(append([]string{}, tool.installArgs...), pkg)
	},

	removeArgs: func(pkg string) []string {
		tool := currentSystemTool()
		if tool == nil {
			return nil
		}
		return append(append([]string{}, tool.removeArgs...), pkg)
	},

	detect: func(projectDirectory rcmpath.AbsoluteSystemPath, packageManager *PackageManager) (bool, error) {
		// The system manager has no spec file of its own; it is enabled
		// through the workspace manifest instead.
		return false, nil
	},
}
