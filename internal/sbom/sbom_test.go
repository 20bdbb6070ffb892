package sbom

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/lockfile"
)

func testLock() *lockfile.Lockfile {
	lock := lockfile.New()
	lock.Upsert(lockfile.LockedPackage{Name: "serde", Version: "1.0.188", Manager: "cargo"})
	lock.Upsert(lockfile.LockedPackage{Name: "@types/node", Version: "20.4.1", Manager: "npm", Dev: true})
	return lock
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"cyclonedx", "spdx"} {
		format, err := ParseFormat(name)
		assert.NoError(t, err)
		assert.Equal(t, Format(name), format)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPurl(t *testing.T) {
	assert.Equal(t, "pkg:cargo/serde@1.0.188", Purl(lockfile.LockedPackage{Name: "serde", Version: "1.0.188", Manager: "cargo"}))
	assert.Equal(t, "pkg:generic/ripgrep@13.0.0", Purl(lockfile.LockedPackage{Name: "ripgrep", Version: "13.0.0", Manager: "system"}))
}

func TestGenerateCycloneDX(t *testing.T) {
	out, err := Generate(testLock(), FormatCycloneDX, "demo", "1.2.0", time.Unix(1700000000, 0))
	assert.NoError(t, err)

	var doc map[string]interface{}
	assert.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "CycloneDX", doc["bomFormat"])
	components := doc["components"].([]interface{})
	assert.Equal(t, 2, len(components))
	first := components[0].(map[string]interface{})
	assert.Equal(t, "pkg:cargo/serde@1.0.188", first["purl"])
	second := components[1].(map[string]interface{})
	assert.Equal(t, "optional", second["scope"])
}

func TestGenerateSPDX(t *testing.T) {
	out, err := Generate(testLock(), FormatSPDX, "demo", "1.2.0", time.Unix(1700000000, 0))
	assert.NoError(t, err)

	var doc map[string]interface{}
	assert.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "SPDX-2.3", doc["spdxVersion"])
	assert.Equal(t, "demo", doc["name"])
	packages := doc["packages"].([]interface{})
	assert.Equal(t, 2, len(packages))
}
