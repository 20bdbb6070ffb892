package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/workspace"
)

func TestComputeAddsRemovesChanges(t *testing.T) {
	manifest := &workspace.Manifest{
		Dependencies: map[string]workspace.Dependency{
			"serde": {Version: "1.0.188", Manager: "cargo"},
			"react": {Version: "latest", Manager: "npm"},
			"jq":    {Version: "latest", Manager: "system"},
		},
	}
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "serde", Version: "1.0.100", Manager: "cargo"})
	lock.Upsert(lockfile.LockedPackage{Name: "react", Version: "18.2.0", Manager: "npm"})
	lock.Upsert(lockfile.LockedPackage{Name: "left-pad", Version: "1.3.0", Manager: "npm"})

	result := Compute(manifest, lock)
	assert.Equal(t, 3, len(result.Changes))

	// Sorted by manager then name.
	assert.Equal(t, ChangeUpgrade, result.Changes[0].Type)
	assert.Equal(t, "serde", result.Changes[0].Name)
	assert.Equal(t, "1.0.100", result.Changes[0].From)
	assert.Equal(t, "1.0.188", result.Changes[0].To)

	assert.Equal(t, ChangeRemove, result.Changes[1].Type)
	assert.Equal(t, "left-pad", result.Changes[1].Name)

	assert.Equal(t, ChangeAdd, result.Changes[2].Type)
	assert.Equal(t, "jq", result.Changes[2].Name)
	assert.Equal(t, "system", result.Changes[2].Manager)
}

func TestComputeLatestIsSatisfiedByAnyPin(t *testing.T) {
	manifest := &workspace.Manifest{
		Dependencies: map[string]workspace.Dependency{
			"react": {Version: "latest", Manager: "npm"},
		},
	}
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "react", Version: "17.0.2", Manager: "npm"})

	assert.True(t, Compute(manifest, lock).IsEmpty())
}

func TestComputeConstraintSatisfied(t *testing.T) {
	manifest := &workspace.Manifest{
		Dependencies: map[string]workspace.Dependency{
			"monolog/monolog": {Version: "^3.0", Manager: "composer"},
		},
	}
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "monolog/monolog", Version: "3.4.0", Manager: "composer"})

	assert.True(t, Compute(manifest, lock).IsEmpty())

	lock = lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "monolog/monolog", Version: "2.9.1", Manager: "composer"})
	result := Compute(manifest, lock)
	assert.Equal(t, 1, len(result.Changes))
	assert.Equal(t, ChangeUpgrade, result.Changes[0].Type)
}

func TestComputeDowngrade(t *testing.T) {
	manifest := &workspace.Manifest{
		Dependencies: map[string]workspace.Dependency{
			"react": {Version: "17.0.2", Manager: "npm"},
		},
	}
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "react", Version: "18.2.0", Manager: "npm"})

	result := Compute(manifest, lock)
	assert.Equal(t, 1, len(result.Changes))
	assert.Equal(t, ChangeDowngrade, result.Changes[0].Type)
}

func TestForManagers(t *testing.T) {
	p := &Plan{Changes: []Change{
		{Type: ChangeAdd, Manager: "npm", Name: "react"},
		{Type: ChangeAdd, Manager: "cargo", Name: "serde"},
	}}

	filtered := p.ForManagers([]string{"cargo"})
	assert.Equal(t, 1, len(filtered.Changes))
	assert.Equal(t, "serde", filtered.Changes[0].Name)

	assert.Equal(t, 2, len(p.ForManagers(nil).Changes))
}

func TestSummary(t *testing.T) {
	p := &Plan{Changes: []Change{
		{Type: ChangeAdd},
		{Type: ChangeAdd},
		{Type: ChangeRemove},
	}}
	assert.Equal(t, "2 to add, 1 to remove", p.Summary())
	assert.Equal(t, "nothing to do", (&Plan{}).Summary())
}
