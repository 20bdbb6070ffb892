package packagemanager

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// PackageSpec is a parsed package argument: name[@version], optionally
// prefixed with an explicit manager slug ("npm:react@18.2.0").
type PackageSpec struct {
	Name    string
	Version string
	Manager string
}

// ParseSpec parses a package argument. The version defaults to "latest"
// and the manager is empty when not given explicitly.
func ParseSpec(arg string) (PackageSpec, error) {
	spec := PackageSpec{Version: "latest"}

	rest := arg
	for _, slug := range Slugs() {
		if strings.HasPrefix(rest, slug+":") {
			spec.Manager = slug
			rest = strings.TrimPrefix(rest, slug+":")
			break
		}
	}

	// Scoped npm names start with '@'; everything after the first
	// non-leading '@' is the version.
	at := strings.LastIndex(rest, "@")
	if at > 0 {
		spec.Name = rest[:at]
		spec.Version = rest[at+1:]
	} else {
		spec.Name = rest
	}

	if spec.Name == "" {
		return PackageSpec{}, errors.Errorf("invalid package spec: %v", arg)
	}
	if spec.Version == "" {
		spec.Version = "latest"
	}
	return spec, nil
}

// composerNamePattern matches vendor/package names like "monolog/monolog".
var composerNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*/[a-z0-9][a-z0-9._-]*$`)

// Tools commonly installed from the host package manager rather than a
// language registry.
var knownSystemPackages = map[string]bool{
	"curl":    true,
	"wget":    true,
	"git":     true,
	"jq":      true,
	"make":    true,
	"cmake":   true,
	"gcc":     true,
	"openssl": true,
	"ripgrep": true,
	"tmux":    true,
	"htop":    true,
}

// CandidateManagers guesses which managers could own the named package,
// most likely first. Only managers in enabled are considered; an empty
// enabled list allows all of them.
func CandidateManagers(name string, enabled []string, root rcmpath.AbsoluteSystemPath) []*PackageManager {
	allowed := func(slug string) bool {
		if len(enabled) == 0 {
			return true
		}
		for _, e := range enabled {
			if e == slug {
				return true
			}
		}
		return false
	}

	var candidates []*PackageManager
	add := func(slug string) {
		if !allowed(slug) {
			return
		}
		for _, c := range candidates {
			if c.Slug == slug {
				return
			}
		}
		pm, err := GetPackageManager(slug)
		if err == nil {
			candidates = append(candidates, pm)
		}
	}

	// Name shape is the strongest signal.
	switch {
	case strings.HasPrefix(name, "@"):
		add("npm")
		return candidates
	case composerNamePattern.MatchString(name):
		add("composer")
		return candidates
	case knownSystemPackages[name]:
		add("system")
		return candidates
	}

	// Otherwise fall back to project context: a manager whose spec file
	// exists at the root is a likely owner.
	if root != "" {
		for _, slug := range Slugs() {
			pm, err := GetPackageManager(slug)
			if err != nil {
				continue
			}
			if owns, _ := pm.Detect(root); owns {
				add(slug)
			}
		}
	}
	if len(candidates) > 0 {
		return candidates
	}

	for _, slug := range Slugs() {
		add(slug)
	}
	return candidates
}
