package rcmpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinAndDir(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(t.TempDir())

	joined := root.Join("a", "b", "c.txt")
	assert.Equal(t, root.Join("a", "b"), joined.Dir())
	assert.Equal(t, "c.txt", joined.Base())
}

func TestRelativeToAndRestoreAnchor(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(t.TempDir())
	child := root.Join("src", "main.go")

	anchored, err := child.RelativeTo(root)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("src", "main.go"), anchored.ToString())
	assert.Equal(t, "src/main.go", anchored.ToUnixPath())
	assert.Equal(t, child, anchored.RestoreAnchor(root))
}

func TestContainsPath(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(t.TempDir())

	inside, err := root.ContainsPath(root.Join("sub", "file"))
	assert.NoError(t, err)
	assert.True(t, inside)

	outside, err := root.Join("sub").ContainsPath(root.Join("other"))
	assert.NoError(t, err)
	assert.False(t, outside)
}

func TestFindup(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(t.TempDir())
	nested := root.Join("a", "b")
	assert.NoError(t, nested.MkdirAll())
	assert.NoError(t, root.Join("marker.json").WriteFile([]byte("{}"), 0644))

	found, err := nested.Findup("marker.json")
	assert.NoError(t, err)
	assert.Equal(t, root, found)

	missing, err := nested.Findup("definitely-not-here.json")
	assert.NoError(t, err)
	assert.Equal(t, AbsoluteSystemPath(""), missing)
}

func TestCheckedToAbsoluteSystemPath(t *testing.T) {
	abs, ok := CheckedToAbsoluteSystemPath(t.TempDir())
	assert.True(t, ok)
	assert.True(t, abs.DirExists())

	_, ok = CheckedToAbsoluteSystemPath("relative/path")
	assert.False(t, ok)
}

func TestExistenceProbes(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(t.TempDir())
	file := root.Join("f.txt")
	assert.NoError(t, file.WriteFile([]byte("x"), 0644))

	assert.True(t, file.FileExists())
	assert.False(t, file.DirExists())
	assert.True(t, root.DirExists())
	assert.False(t, root.Join("nope").Exists())
}
