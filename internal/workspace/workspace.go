// Package workspace models the rcm.json manifest that marks the root of
// an rcm workspace and records its dependency requirements.
package workspace

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// ManifestName is the file that marks a workspace root.
const ManifestName = "rcm.json"

// SchemaVersion is the manifest schema this build reads and writes.
const SchemaVersion = 1

// ErrNotInitialized is returned when no rcm.json can be found.
var ErrNotInitialized = errors.New("no rcm.json found. Run `rcm init` to create a workspace")

// Dependency is one requirement recorded in the manifest.
type Dependency struct {
	Version   string   `json:"version"`
	Manager   string   `json:"manager"`
	Dev       bool     `json:"dev,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
}

// NamedDependency pairs a dependency with its package name for listings.
type NamedDependency struct {
	Name string
	Dependency
}

// Manifest is the parsed shape of rcm.json.
type Manifest struct {
	SchemaVersion int                   `json:"schemaVersion"`
	Template      string                `json:"template,omitempty"`
	Managers      []string              `json:"managers"`
	Dependencies  map[string]Dependency `json:"dependencies,omitempty"`
}

// Workspace is an open workspace: a root directory plus its manifest.
type Workspace struct {
	Root     rcmpath.AbsoluteSystemPath
	Manifest *Manifest
}

// Find walks up from startDir looking for rcm.json. The second return
// is false when no ancestor holds a manifest.
func Find(startDir rcmpath.AbsoluteSystemPath) (rcmpath.AbsoluteSystemPath, bool, error) {
	root, err := startDir.Findup(ManifestName)
	if err != nil {
		return "", false, err
	}
	if root == "" {
		return "", false, nil
	}
	return root, true, nil
}

// Open loads the workspace rooted at root.
func Open(root rcmpath.AbsoluteSystemPath) (*Workspace, error) {
	manifestPath := root.Join(ManifestName)
	contents, err := manifestPath.ReadFile()
	if err != nil {
		return nil, ErrNotInitialized
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(contents, manifest); err != nil {
		return nil, errors.Wrapf(err, "%v appears to be invalid", manifestPath)
	}
	if manifest.SchemaVersion > SchemaVersion {
		return nil, errors.Errorf("rcm.json schema version %d is newer than this rcm understands", manifest.SchemaVersion)
	}
	if manifest.Dependencies == nil {
		manifest.Dependencies = map[string]Dependency{}
	}
	return &Workspace{Root: root, Manifest: manifest}, nil
}

// InitAt creates a fresh manifest at root, overwriting any existing one.
func InitAt(root rcmpath.AbsoluteSystemPath, managers []string, template string) (*Workspace, error) {
	ws := &Workspace{
		Root: root,
		Manifest: &Manifest{
			SchemaVersion: SchemaVersion,
			Template:      template,
			Managers:      managers,
			Dependencies:  map[string]Dependency{},
		},
	}
	if err := ws.Save(); err != nil {
		return nil, err
	}
	return ws, nil
}

// Save writes the manifest back to rcm.json.
func (w *Workspace) Save() error {
	contents, err := json.MarshalIndent(w.Manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serializing rcm.json")
	}
	contents = append(contents, '\n')
	return w.Root.Join(ManifestName).WriteFile(contents, 0644)
}

// AddDependency records a requirement, replacing any prior entry.
func (w *Workspace) AddDependency(name string, dep Dependency) {
	w.Manifest.Dependencies[name] = dep
}

// RemoveDependency removes a requirement, reporting whether it existed.
func (w *Workspace) RemoveDependency(name string) bool {
	if _, ok := w.Manifest.Dependencies[name]; !ok {
		return false
	}
	delete(w.Manifest.Dependencies, name)
	return true
}

// ListDependencies returns all requirements sorted by name.
func (w *Workspace) ListDependencies() []NamedDependency {
	deps := make([]NamedDependency, 0, len(w.Manifest.Dependencies))
	for name, dep := range w.Manifest.Dependencies {
		deps = append(deps, NamedDependency{Name: name, Dependency: dep})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

// EnabledManagers returns the managers this workspace was initialized with.
func (w *Workspace) EnabledManagers() []string {
	return w.Manifest.Managers
}

// HasManager reports whether the named manager is enabled here.
func (w *Workspace) HasManager(slug string) bool {
	for _, m := range w.Manifest.Managers {
		if m == slug {
			return true
		}
	}
	return false
}
