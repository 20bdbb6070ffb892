package letcmd

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// Store reads and seeds LET specs under .rcm/let in the workspace.
type Store struct {
	specsDir rcmpath.AbsoluteSystemPath
}

// NewStore returns the spec store for a workspace root.
func NewStore(workspaceRoot rcmpath.AbsoluteSystemPath) *Store {
	return &Store{specsDir: workspaceRoot.Join(".rcm", "let")}
}

// Initialize creates the specs directory and seeds the built-in specs.
// Existing spec files are left alone so user edits survive.
func (s *Store) Initialize() error {
	if err := s.specsDir.MkdirAll(); err != nil {
		return errors.Wrap(err, "creating let specs directory")
	}
	for _, spec := range defaultSpecs() {
		path := s.specsDir.Join(spec.Target + ".json")
		if path.FileExists() {
			continue
		}
		contents, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return err
		}
		if err := path.WriteFile(append(contents, '\n'), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the spec for a target.
func (s *Store) Load(target string) (*Spec, error) {
	path := s.specsDir.Join(target + ".json")
	if !path.FileExists() {
		return nil, errors.Errorf("no let spec found for target: %v", target)
	}
	contents, err := path.ReadFile()
	if err != nil {
		return nil, errors.Wrapf(err, "reading let spec for %v", target)
	}
	var spec Spec
	if err := json.Unmarshal(contents, &spec); err != nil {
		return nil, errors.Wrapf(err, "parsing let spec for %v", target)
	}
	return &spec, nil
}

// Targets lists the targets that have a spec on disk.
func (s *Store) Targets() ([]string, error) {
	entries, err := s.specsDir.ReadDir()
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, entry := range entries {
		name := entry.Name()
		if len(name) > len(".json") && name[len(name)-len(".json"):] == ".json" {
			targets = append(targets, name[:len(name)-len(".json")])
		}
	}
	sort.Strings(targets)
	return targets, nil
}
