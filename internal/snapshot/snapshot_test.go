package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

func TestFileName(t *testing.T) {
	name := FileName("My Workspace", time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC))
	assert.Equal(t, "my-workspace-20231114T221320Z.tar.gz", name)
}

func TestCreateRestoreRoundTrip(t *testing.T) {
	source := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	assert.NoError(t, source.Join("src").MkdirAll())
	assert.NoError(t, source.Join("rcm.json").WriteFile([]byte(`{"schemaVersion": 1}`), 0644))
	assert.NoError(t, source.Join("src", "main.rs").WriteFile([]byte("fn main() {}\n"), 0644))

	archive := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir()).Join("snap.tar.gz")
	writer, err := Create(archive)
	assert.NoError(t, err)
	files, err := CollectFiles(source)
	assert.NoError(t, err)
	for _, file := range files {
		assert.NoError(t, writer.AddFile(source, file))
	}
	assert.NoError(t, writer.Close())

	dest := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	reader, err := Open(archive)
	assert.NoError(t, err)
	restored, err := reader.Restore(dest)
	assert.NoError(t, err)
	assert.NoError(t, reader.Close())

	assert.Equal(t, 3, len(restored))
	contents, err := dest.Join("src", "main.rs").ReadFile()
	assert.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(contents))
}

func TestCollectFilesSkipsPackageDirs(t *testing.T) {
	source := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	assert.NoError(t, source.Join("node_modules", "react").MkdirAll())
	assert.NoError(t, source.Join("node_modules", "react", "index.js").WriteFile([]byte("x"), 0644))
	assert.NoError(t, source.Join("package.json").WriteFile([]byte("{}"), 0644))

	files, err := CollectFiles(source)
	assert.NoError(t, err)
	assert.EqualValues(t, []rcmpath.AnchoredSystemPath{"package.json"}, files)
}

func TestCollectFilesHonorsGitignore(t *testing.T) {
	source := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	assert.NoError(t, source.Join(".gitignore").WriteFile([]byte("*.log\n"), 0644))
	assert.NoError(t, source.Join("debug.log").WriteFile([]byte("x"), 0644))
	assert.NoError(t, source.Join("rcm.json").WriteFile([]byte("{}"), 0644))

	files, err := CollectFiles(source)
	assert.NoError(t, err)
	assert.EqualValues(t, []rcmpath.AnchoredSystemPath{".gitignore", "rcm.json"}, files)
}

func TestRestoreRejectsTraversal(t *testing.T) {
	_, err := checkName("../evil")
	assert.ErrorIs(t, err, errTraversal)

	_, err = checkName("/etc/passwd")
	assert.ErrorIs(t, err, errTraversal)

	_, err = checkName("ok/../fine")
	assert.NoError(t, err)
}

func TestCheckLinkTarget(t *testing.T) {
	assert.NoError(t, checkLinkTarget("dir/link", "../sibling"))
	assert.ErrorIs(t, checkLinkTarget("link", "../../outside"), errTraversal)
	assert.ErrorIs(t, checkLinkTarget("link", "/etc/passwd"), errTraversal)
}

func TestSnapshotIsDeterministic(t *testing.T) {
	source := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	assert.NoError(t, source.Join("rcm.json").WriteFile([]byte("{}"), 0644))

	shas := make([][]byte, 2)
	for i := range shas {
		archive := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir()).Join("snap.tar.gz")
		writer, err := Create(archive)
		assert.NoError(t, err)
		files, err := CollectFiles(source)
		assert.NoError(t, err)
		for _, file := range files {
			assert.NoError(t, writer.AddFile(source, file))
		}
		assert.NoError(t, writer.Close())

		reader, err := Open(archive)
		assert.NoError(t, err)
		sha, err := reader.GetSha()
		assert.NoError(t, err)
		assert.NoError(t, reader.Close())
		shas[i] = sha
	}
	assert.Equal(t, shas[0], shas[1])
}
