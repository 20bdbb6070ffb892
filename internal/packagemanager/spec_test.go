package packagemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		arg  string
		want PackageSpec
	}{
		{"serde", PackageSpec{Name: "serde", Version: "latest"}},
		{"serde@1.0.188", PackageSpec{Name: "serde", Version: "1.0.188"}},
		{"@types/node", PackageSpec{Name: "@types/node", Version: "latest"}},
		{"@types/node@20.4.1", PackageSpec{Name: "@types/node", Version: "20.4.1"}},
		{"npm:react@18.2.0", PackageSpec{Name: "react", Version: "18.2.0", Manager: "npm"}},
		{"composer:monolog/monolog", PackageSpec{Name: "monolog/monolog", Version: "latest", Manager: "composer"}},
		{"system:ripgrep", PackageSpec{Name: "ripgrep", Version: "latest", Manager: "system"}},
		{"serde@", PackageSpec{Name: "serde", Version: "latest"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseSpec(tt.arg)
			assert.NoError(t, err)
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestParseSpecInvalid(t *testing.T) {
	_, err := ParseSpec("npm:")
	assert.Error(t, err)
}

func TestCandidateManagers(t *testing.T) {
	tests := []struct {
		name      string
		pkg       string
		enabled   []string
		wantFirst string
		wantLen   int
	}{
		{"scoped name is npm", "@babel/core", nil, "npm", 1},
		{"vendor slash name is composer", "monolog/monolog", nil, "composer", 1},
		{"known tool is system", "ripgrep", nil, "system", 1},
		{"scoped name filtered out", "@babel/core", []string{"cargo"}, "", 0},
		{"plain name falls back to all", "serde", nil, "cargo", 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateManagers(tt.pkg, tt.enabled, "")
			assert.Equal(t, tt.wantLen, len(got))
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Slug)
			}
		})
	}
}

func TestCandidateManagersUsesProjectContext(t *testing.T) {
	root := rcmpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	err := root.Join("Cargo.toml").WriteFile([]byte("[package]\nname = \"demo\"\n"), 0644)
	assert.NoError(t, err)

	got := CandidateManagers("serde", nil, root)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "cargo", got[0].Slug)
}
