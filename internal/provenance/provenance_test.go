package provenance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/lockfile"
)

func TestGenerate(t *testing.T) {
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "serde", Version: "1.0.188", Manager: "cargo"})
	lock.Upsert(lockfile.LockedPackage{Name: "react", Version: "18.2.0", Manager: "npm"})

	out, err := Generate(lock, "demo", "1.2.0", time.Unix(1700000000, 0))
	assert.NoError(t, err)

	var statement Statement
	assert.NoError(t, json.Unmarshal(out, &statement))
	assert.Equal(t, "https://in-toto.io/Statement/v0.1", statement.Type)
	assert.Equal(t, "https://slsa.dev/provenance/v0.2", statement.PredicateType)
	assert.Equal(t, "demo", statement.Subject[0].Name)
	assert.Equal(t, "https://rcm.dev/builder/rcm@1.2.0", statement.Predicate.Builder.ID)
	assert.NotEmpty(t, statement.Predicate.Metadata.BuildInvocationID)
	assert.Equal(t, 2, len(statement.Predicate.Materials))
	assert.Equal(t, "pkg:cargo/serde@1.0.188", statement.Predicate.Materials[0].URI)
}

func TestGenerateEmptyLock(t *testing.T) {
	out, err := Generate(lockfile.New(), "demo", "unknown", time.Now())
	assert.NoError(t, err)

	var statement Statement
	assert.NoError(t, json.Unmarshal(out, &statement))
	assert.Empty(t, statement.Predicate.Materials)
}
