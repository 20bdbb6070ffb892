package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

func testRoot(t *testing.T) rcmpath.AbsoluteSystemPath {
	t.Helper()
	return rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
}

func TestInitAtRoundTrips(t *testing.T) {
	root := testRoot(t)

	_, err := InitAt(root, []string{"cargo", "npm"}, "polyglot")
	assert.NoError(t, err)

	ws, err := Open(root)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cargo", "npm"}, ws.EnabledManagers())
	assert.Equal(t, "polyglot", ws.Manifest.Template)
	assert.Empty(t, ws.Manifest.Dependencies)
}

func TestFindWalksUp(t *testing.T) {
	root := testRoot(t)
	_, err := InitAt(root, []string{"system"}, "")
	assert.NoError(t, err)

	nested := root.Join("crates", "core", "src")
	assert.NoError(t, nested.MkdirAll())

	found, ok, err := Find(nested)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, root, found)
}

func TestFindReportsMissing(t *testing.T) {
	root := testRoot(t)

	_, ok, err := Find(root)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	root := testRoot(t)
	contents := []byte(`{"schemaVersion": 99, "managers": ["npm"]}`)
	assert.NoError(t, root.Join(ManifestName).WriteFile(contents, 0644))

	_, err := Open(root)
	assert.Error(t, err)
}

func TestOpenRejectsInvalidManifest(t *testing.T) {
	root := testRoot(t)
	assert.NoError(t, root.Join(ManifestName).WriteFile([]byte("{nope"), 0644))

	_, err := Open(root)
	assert.Error(t, err)
}

func TestDependenciesSortedAndMutable(t *testing.T) {
	root := testRoot(t)
	ws, err := InitAt(root, []string{"cargo", "npm"}, "")
	assert.NoError(t, err)

	ws.AddDependency("serde", Dependency{Version: "1.0", Manager: "cargo"})
	ws.AddDependency("react", Dependency{Version: "^18", Manager: "npm"})
	assert.NoError(t, ws.Save())

	reopened, err := Open(root)
	assert.NoError(t, err)

	deps := reopened.ListDependencies()
	assert.Len(t, deps, 2)
	assert.Equal(t, "react", deps[0].Name)
	assert.Equal(t, "serde", deps[1].Name)

	assert.True(t, reopened.RemoveDependency("react"))
	assert.False(t, reopened.RemoveDependency("react"))
}

func TestHasManager(t *testing.T) {
	root := testRoot(t)
	ws, err := InitAt(root, []string{"cargo"}, "")
	assert.NoError(t, err)

	assert.True(t, ws.HasManager("cargo"))
	assert.False(t, ws.HasManager("npm"))
}
