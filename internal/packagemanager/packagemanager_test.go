package packagemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

func TestGetPackageManager(t *testing.T) {
	for _, slug := range []string{"cargo", "npm", "composer", "system"} {
		pm, err := GetPackageManager(slug)
		assert.NoError(t, err)
		assert.Equal(t, slug, pm.Slug)
	}

	_, err := GetPackageManager("pip")
	assert.Error(t, err)
}

func TestCountDependenciesCargo(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	manifest := `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1.0"
tokio = { version = "1", features = ["full"] }

[dev-dependencies]
tempfile = "3"
`
	err := root.Join("Cargo.toml").WriteFile([]byte(manifest), 0644)
	assert.NoError(t, err)

	cargo, err := GetPackageManager("cargo")
	assert.NoError(t, err)
	count, err := cargo.CountDependencies(root)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCountDependenciesComposerSkipsPhp(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	manifest := `{
  "require": {
    "php": ">=8.1",
    "monolog/monolog": "^3.0"
  },
  "require-dev": {
    "phpunit/phpunit": "^10"
  }
}`
	err := root.Join("composer.json").WriteFile([]byte(manifest), 0644)
	assert.NoError(t, err)

	composer, err := GetPackageManager("composer")
	assert.NoError(t, err)
	count, err := composer.CountDependencies(root)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetWorkspacesNpm(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	err := root.Join("package.json").WriteFile([]byte(`{"workspaces": ["packages/*"]}`), 0644)
	assert.NoError(t, err)
	appDir := root.Join("packages", "app")
	assert.NoError(t, appDir.MkdirAll())
	assert.NoError(t, appDir.Join("package.json").WriteFile([]byte(`{"name": "app"}`), 0644))

	npm, err := GetPackageManager("npm")
	assert.NoError(t, err)
	specfiles, err := npm.GetWorkspaces(root)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(specfiles))
	assert.Contains(t, specfiles[0], "app")
}

func TestInstallMissing(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	err := root.Join("package.json").WriteFile([]byte(`{"dependencies": {"react": "18.2.0"}}`), 0644)
	assert.NoError(t, err)

	npm, err := GetPackageManager("npm")
	assert.NoError(t, err)
	assert.True(t, npm.InstallMissing(root))

	assert.NoError(t, root.Join("node_modules").MkdirAll())
	assert.False(t, npm.InstallMissing(root))
}

func TestAddInvokesRunner(t *testing.T) {
	var gotDir, gotName string
	var gotArgs []string
	fake := func(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
		gotDir = dir
		gotName = name
		gotArgs = args
		return nil, nil
	}

	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	cargo, err := GetPackageManager("cargo")
	assert.NoError(t, err)
	err = cargo.Add(context.Background(), fake, root, "serde", "1.0.188", false)
	assert.NoError(t, err)
	assert.Equal(t, root.ToString(), gotDir)
	assert.Equal(t, "cargo", gotName)
	assert.EqualValues(t, []string{"add", "serde@1.0.188"}, gotArgs)
}

func TestParseToolVersion(t *testing.T) {
	assert.Equal(t, "1.71.0", parseToolVersion("cargo 1.71.0 (cfd3bbd8f 2023-06-08)"))
	assert.Equal(t, "9.5.1", parseToolVersion("9.5.1\n"))
	assert.Equal(t, "2.5.8", parseToolVersion("Composer version 2.5.8 2023-06-09"))
}
