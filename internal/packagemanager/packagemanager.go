// Adapted from https://github.com/replit/upm
// Copyright (c) 2019 Neoreason d/b/a Repl.it. All rights reserved.
// SPDX-License-Identifier: MIT

package packagemanager

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
	"github.com/rcm-dev/rcm/internal/util"
)

// PackageManager is an abstraction across the package managers rcm
// drives: cargo, npm, composer, and the OS package manager.
type PackageManager struct {
	// The descriptive name of the Package Manager.
	Name string

	// The unique identifier of the Package Manager.
	Slug string

	// The command used to invoke the Package Manager.
	Command string

	// The location of the package spec file used by the Package Manager.
	// Empty for managers without a per-workspace spec.
	Specfile string

	// The location of the package lock file used by the Package Manager.
	Lockfile string

	// The directory in which package assets are stored by the Package Manager.
	PackageDir string

	// versionArgs asks the tool for its own version.
	versionArgs []string

	// addArgs builds the argument vector that records and installs a
	// single requirement.
	addArgs func(pkg string, version string, dev bool) []string

	// removeArgs builds the argument vector that removes a requirement.
	removeArgs func(pkg string) []string

	// syncArgs installs everything the spec file requires.
	syncArgs []string

	// updateArgs upgrades everything the spec file requires.
	updateArgs []string

	// cleanArgs removes build artifacts; nil means remove PackageDir.
	cleanArgs []string

	// detect reports whether this manager appears to own part of the
	// project at the given directory.
	detect func(projectDirectory rcmpath.AbsoluteSystemPath, packageManager *PackageManager) (bool, error)

	// getWorkspaceGlobs returns the workspace member globs from the spec
	// file, for managers that support multi-package workspaces.
	getWorkspaceGlobs func(rootpath rcmpath.AbsoluteSystemPath) ([]string, error)

	// countDependencies parses the spec file and counts requirements.
	countDependencies func(rootpath rcmpath.AbsoluteSystemPath) (int, error)
}

var packageManagers = []PackageManager{
	cargo,
	nodejsNpm,
	phpComposer,
	system,
}

// Slugs returns the identifiers of every known manager.
func Slugs() []string {
	slugs := make([]string, len(packageManagers))
	for i, pm := range packageManagers {
		slugs[i] = pm.Slug
	}
	return slugs
}

// GetPackageManager resolves a manager by slug.
func GetPackageManager(slug string) (*PackageManager, error) {
	for i := range packageManagers {
		if packageManagers[i].Slug == slug {
			return &packageManagers[i], nil
		}
	}
	return nil, errors.Errorf("unknown package manager: %v", slug)
}

// Available reports whether the manager's binary is on PATH.
func (pm *PackageManager) Available() bool {
	return util.CommandExists(pm.command())
}

func (pm *PackageManager) command() string {
	if pm.Slug == "system" {
		return systemCommand()
	}
	return pm.Command
}

// Detect reports whether this manager appears to own part of the
// project at the given directory.
func (pm *PackageManager) Detect(projectDirectory rcmpath.AbsoluteSystemPath) (bool, error) {
	if pm.detect == nil {
		return false, nil
	}
	return pm.detect(projectDirectory, pm)
}

// ToolVersion reports the version of the underlying tool.
func (pm *PackageManager) ToolVersion(ctx context.Context, run CommandRunner) (string, error) {
	if len(pm.versionArgs) == 0 {
		return "", errors.Errorf("%v does not report a version", pm.Name)
	}
	out, err := run(ctx, "", pm.command(), pm.versionArgs...)
	if err != nil {
		return "", errors.Wrapf(err, "checking %v version", pm.command())
	}
	return parseToolVersion(string(out)), nil
}

// Add records and installs a single requirement.
func (pm *PackageManager) Add(ctx context.Context, run CommandRunner, root rcmpath.AbsoluteSystemPath, pkg string, version string, dev bool) error {
	if pm.addArgs == nil {
		return errors.Errorf("%v cannot add packages", pm.Name)
	}
	_, err := run(ctx, root.ToString(), pm.command(), pm.addArgs(pkg, version, dev)...)
	return err
}

// Remove uninstalls a requirement.
func (pm *PackageManager) Remove(ctx context.Context, run CommandRunner, root rcmpath.AbsoluteSystemPath, pkg string) error {
	if pm.removeArgs == nil {
		return errors.Errorf("%v cannot remove packages", pm.Name)
	}
	_, err := run(ctx, root.ToString(), pm.command(), pm.removeArgs(pkg)...)
	return err
}

// Sync installs everything the spec file requires.
func (pm *PackageManager) Sync(ctx context.Context, run CommandRunner, root rcmpath.AbsoluteSystemPath) error {
	if len(pm.syncArgs) == 0 {
		return nil
	}
	_, err := run(ctx, root.ToString(), pm.command(), pm.syncArgs...)
	return err
}

// Update upgrades everything the spec file requires.
func (pm *PackageManager) Update(ctx context.Context, run CommandRunner, root rcmpath.AbsoluteSystemPath) error {
	if len(pm.updateArgs) == 0 {
		return nil
	}
	_, err := run(ctx, root.ToString(), pm.command(), pm.updateArgs...)
	return err
}

// Clean removes build artifacts.
func (pm *PackageManager) Clean(ctx context.Context, run CommandRunner, root rcmpath.AbsoluteSystemPath) error {
	if len(pm.cleanArgs) > 0 {
		_, err := run(ctx, root.ToString(), pm.command(), pm.cleanArgs...)
		return err
	}
	if pm.PackageDir == "" {
		return nil
	}
	return root.Join(pm.PackageDir).RemoveAll()
}

// CountDependencies parses the spec file and counts requirements.
func (pm *PackageManager) CountDependencies(root rcmpath.AbsoluteSystemPath) (int, error) {
	if pm.countDependencies == nil {
		return 0, nil
	}
	return pm.countDependencies(root)
}

// HasSpecfile reports whether the manager's spec file exists at root.
func (pm *PackageManager) HasSpecfile(root rcmpath.AbsoluteSystemPath) bool {
	if pm.Specfile == "" {
		return false
	}
	return root.Join(pm.Specfile).FileExists()
}

// InstallMissing reports whether requirements exist but nothing has been
// installed yet (no lockfile and no package directory).
func (pm *PackageManager) InstallMissing(root rcmpath.AbsoluteSystemPath) bool {
	count, err := pm.CountDependencies(root)
	if err != nil || count == 0 {
		return false
	}
	if pm.Lockfile != "" && root.Join(pm.Lockfile).FileExists() {
		return false
	}
	if pm.PackageDir != "" && root.Join(pm.PackageDir).DirExists() {
		return false
	}
	return true
}

// GetWorkspaces returns the list of spec files for workspace members.
func (pm *PackageManager) GetWorkspaces(rootpath rcmpath.AbsoluteSystemPath) ([]string, error) {
	if pm.getWorkspaceGlobs == nil {
		return nil, nil
	}
	globs, err := pm.getWorkspaceGlobs(rootpath)
	if err != nil {
		return nil, err
	}

	var specfiles []string
	for _, space := range globs {
		pattern := filepath.ToSlash(filepath.Join(rootpath.ToString(), space, pm.Specfile))
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid workspace glob: %v", space)
		}
		specfiles = append(specfiles, matches...)
	}
	return specfiles, nil
}

// parseToolVersion pulls the first version-looking token from tool output.
func parseToolVersion(out string) string {
	fields := strings.Fields(strings.TrimSpace(out))
	for _, field := range fields {
		trimmed := strings.TrimPrefix(field, "v")
		if len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9' {
			return trimmed
		}
	}
	return strings.TrimSpace(out)
}
