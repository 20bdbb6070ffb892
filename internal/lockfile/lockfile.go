// Package lockfile reads and writes rcm.lock, the pinned view of the
// workspace manifest.
package lockfile

import (
	"bytes"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// Name is the lockfile's name at the workspace root.
const Name = "rcm.lock"

// LockVersion is the current on-disk schema version.
const LockVersion = 1

// LockedPackage is one pinned requirement.
type LockedPackage struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Manager  string `yaml:"manager"`
	Resolved string `yaml:"resolved,omitempty"`
	Dev      bool   `yaml:"dev,omitempty"`
}

// Lockfile is the Go representation of rcm.lock.
type Lockfile struct {
	Version     int             `yaml:"version"`
	GeneratedAt time.Time       `yaml:"generatedAt,omitempty"`
	Packages    []LockedPackage `yaml:"packages"`
}

// New returns an empty lockfile at the current schema version.
func New() *Lockfile {
	return &Lockfile{Version: LockVersion}
}

// Read loads rcm.lock from the workspace root. A missing file yields an
// empty lockfile, not an error.
func Read(root rcmpath.AbsoluteSystemPath) (*Lockfile, error) {
	path := root.Join(Name)
	if !path.FileExists() {
		return New(), nil
	}
	contents, err := path.ReadFile()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", Name)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(contents, &lock); err != nil {
		return nil, errors.Wrapf(err, "parsing %v", Name)
	}
	if lock.Version > LockVersion {
		return nil, errors.Errorf("%v was written by a newer rcm (version %v)", Name, lock.Version)
	}
	lock.Version = LockVersion
	return &lock, nil
}

// Write persists the lockfile at the workspace root with entries in a
// stable order.
func (l *Lockfile) Write(root rcmpath.AbsoluteSystemPath) error {
	l.GeneratedAt = time.Now().UTC()
	sort.Slice(l.Packages, func(i, j int) bool {
		if l.Packages[i].Manager != l.Packages[j].Manager {
			return l.Packages[i].Manager < l.Packages[j].Manager
		}
		return l.Packages[i].Name < l.Packages[j].Name
	})

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(l); err != nil {
		return errors.Wrapf(err, "encoding %v", Name)
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return root.Join(Name).WriteFile(buf.Bytes(), 0644)
}

// Get returns the pinned entry for a package under a manager.
func (l *Lockfile) Get(manager string, name string) (LockedPackage, bool) {
	for _, pkg := range l.Packages {
		if pkg.Manager == manager && pkg.Name == name {
			return pkg, true
		}
	}
	return LockedPackage{}, false
}

// Upsert pins a package, replacing any existing entry for the same
// manager and name.
func (l *Lockfile) Upsert(pkg LockedPackage) {
	for i := range l.Packages {
		if l.Packages[i].Manager == pkg.Manager && l.Packages[i].Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// ByManager returns the pins belonging to the given managers. An empty
// filter returns every pin.
func (l *Lockfile) ByManager(managers ...string) []LockedPackage {
	if len(managers) == 0 {
		return l.Packages
	}
	keep := make(map[string]bool, len(managers))
	for _, manager := range managers {
		keep[manager] = true
	}
	subset := []LockedPackage{}
	for _, pkg := range l.Packages {
		if keep[pkg.Manager] {
			subset = append(subset, pkg)
		}
	}
	return subset
}

// Remove drops a package's pin. It reports whether an entry existed.
func (l *Lockfile) Remove(manager string, name string) bool {
	for i := range l.Packages {
		if l.Packages[i].Manager == manager && l.Packages[i].Name == name {
			l.Packages = append(l.Packages[:i], l.Packages[i+1:]...)
			return true
		}
	}
	return false
}
