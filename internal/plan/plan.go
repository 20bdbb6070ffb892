// Package plan computes the difference between the desired dependency
// set in rcm.json and the pinned set in rcm.lock.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver"
	mapset "github.com/deckarep/golang-set"

	"github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/workspace"
)

// ChangeType classifies one planned change.
type ChangeType string

const (
	// ChangeAdd installs a package that is not pinned yet.
	ChangeAdd ChangeType = "add"
	// ChangeUpgrade moves a pin to a newer version.
	ChangeUpgrade ChangeType = "upgrade"
	// ChangeDowngrade moves a pin to an older version.
	ChangeDowngrade ChangeType = "downgrade"
	// ChangeRemove uninstalls a package that is pinned but no longer
	// wanted.
	ChangeRemove ChangeType = "remove"
)

// Change is one planned mutation of the installed state.
type Change struct {
	Type    ChangeType `json:"type"`
	Manager string     `json:"manager"`
	Name    string     `json:"name"`
	From    string     `json:"from,omitempty"`
	To      string     `json:"to,omitempty"`
	Dev     bool       `json:"dev,omitempty"`
}

// Plan is an ordered set of changes. Computing a plan never mutates
// workspace state.
type Plan struct {
	Changes []Change `json:"changes"`
}

// IsEmpty reports whether there is nothing to do.
func (p *Plan) IsEmpty() bool {
	return len(p.Changes) == 0
}

// ForManagers returns the subset of the plan owned by the given
// managers. An empty filter keeps everything.
func (p *Plan) ForManagers(managers []string) *Plan {
	if len(managers) == 0 {
		return p
	}
	keep := map[string]bool{}
	for _, manager := range managers {
		keep[manager] = true
	}
	filtered := &Plan{}
	for _, change := range p.Changes {
		if keep[change.Manager] {
			filtered.Changes = append(filtered.Changes, change)
		}
	}
	return filtered
}

type depKey struct {
	manager string
	name    string
}

// Compute diffs the manifest against the lockfile.
func Compute(manifest *workspace.Manifest, lock *lockfile.Lockfile) *Plan {
	desired := map[depKey]workspace.Dependency{}
	desiredSet := mapset.NewSet()
	for name, dep := range manifest.Dependencies {
		key := depKey{manager: dep.Manager, name: name}
		desired[key] = dep
		desiredSet.Add(key)
	}

	locked := map[depKey]lockfile.LockedPackage{}
	lockedSet := mapset.NewSet()
	for _, pkg := range lock.Packages {
		key := depKey{manager: pkg.Manager, name: pkg.Name}
		locked[key] = pkg
		lockedSet.Add(key)
	}

	result := &Plan{}
	for item := range desiredSet.Difference(lockedSet).Iter() {
		key := item.(depKey)
		dep := desired[key]
		result.Changes = append(result.Changes, Change{
			Type:    ChangeAdd,
			Manager: key.manager,
			Name:    key.name,
			To:      dep.Version,
			Dev:     dep.Dev,
		})
	}
	for item := range lockedSet.Difference(desiredSet).Iter() {
		key := item.(depKey)
		pkg := locked[key]
		result.Changes = append(result.Changes, Change{
			Type:    ChangeRemove,
			Manager: key.manager,
			Name:    key.name,
			From:    pkg.Version,
		})
	}
	for item := range desiredSet.Intersect(lockedSet).Iter() {
		key := item.(depKey)
		dep := desired[key]
		pkg := locked[key]
		if change, changed := compareVersions(dep, pkg); changed {
			change.Manager = key.manager
			change.Name = key.name
			result.Changes = append(result.Changes, change)
		}
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		a, b := result.Changes[i], result.Changes[j]
		if a.Manager != b.Manager {
			return a.Manager < b.Manager
		}
		return a.Name < b.Name
	})
	return result
}

// compareVersions decides whether a pinned package still satisfies the
// manifest's requested version.
func compareVersions(dep workspace.Dependency, pkg lockfile.LockedPackage) (Change, bool) {
	// "latest" accepts whatever is pinned; refreshing it is apply's
	// business, not plan's.
	if dep.Version == "" || dep.Version == "latest" {
		return Change{}, false
	}

	pinned, err := semver.NewVersion(pkg.Version)
	if err != nil {
		if dep.Version == pkg.Version {
			return Change{}, false
		}
		return Change{Type: ChangeUpgrade, From: pkg.Version, To: dep.Version, Dev: dep.Dev}, true
	}

	// An exact version compares directly so the change direction is
	// known.
	if wanted, err := semver.NewVersion(dep.Version); err == nil {
		switch {
		case wanted.Equal(pinned):
			return Change{}, false
		case wanted.GreaterThan(pinned):
			return Change{Type: ChangeUpgrade, From: pkg.Version, To: dep.Version, Dev: dep.Dev}, true
		default:
			return Change{Type: ChangeDowngrade, From: pkg.Version, To: dep.Version, Dev: dep.Dev}, true
		}
	}

	// A constraint ("^1.2", ">=2, <4") is checked as a range.
	if constraint, err := semver.NewConstraint(dep.Version); err == nil {
		if constraint.Check(pinned) {
			return Change{}, false
		}
		return Change{Type: ChangeUpgrade, From: pkg.Version, To: dep.Version, Dev: dep.Dev}, true
	}

	if dep.Version == pkg.Version {
		return Change{}, false
	}
	return Change{Type: ChangeUpgrade, From: pkg.Version, To: dep.Version, Dev: dep.Dev}, true
}

// Describe renders one change for text output.
func Describe(change Change) string {
	switch change.Type {
	case ChangeAdd:
		return fmt.Sprintf("+ %v:%v@%v", change.Manager, change.Name, change.To)
	case ChangeRemove:
		return fmt.Sprintf("- %v:%v@%v", change.Manager, change.Name, change.From)
	default:
		return fmt.Sprintf("~ %v:%v %v -> %v (%v)", change.Manager, change.Name, change.From, change.To, change.Type)
	}
}

// Summary renders a one-line tally like "2 to add, 1 to remove".
func (p *Plan) Summary() string {
	counts := map[ChangeType]int{}
	for _, change := range p.Changes {
		counts[change.Type]++
	}
	var parts []string
	for _, entry := range []struct {
		changeType ChangeType
		label      string
	}{
		{ChangeAdd, "to add"},
		{ChangeUpgrade, "to upgrade"},
		{ChangeDowngrade, "to downgrade"},
		{ChangeRemove, "to remove"},
	} {
		if counts[entry.changeType] > 0 {
			parts = append(parts, fmt.Sprintf("%v %v", counts[entry.changeType], entry.label))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
