package util

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Package names may be scoped ("@scope/name"), namespaced
// ("vendor/name"), or bare; each segment is limited to the charset
// registries accept.
var packageSegmentRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

const maxPackageNameLength = 214

// ValidatePackageName rejects names no registry would accept.
func ValidatePackageName(name string) error {
	if name == "" {
		return errors.New("package name must not be empty")
	}
	if len(name) > maxPackageNameLength {
		return errors.Errorf("package name %q exceeds %d characters", name, maxPackageNameLength)
	}
	if strings.Contains(name, "..") {
		return errors.Errorf("package name %q must not contain path traversal", name)
	}

	segments := strings.Split(strings.TrimPrefix(name, "@"), "/")
	if len(segments) > 2 {
		return errors.Errorf("package name %q has too many path segments", name)
	}
	for _, segment := range segments {
		if !packageSegmentRegex.MatchString(segment) {
			return errors.Errorf("invalid package name: %q", name)
		}
	}
	return nil
}

var versionRegex = regexp.MustCompile(`^[\^~><=]*[0-9a-zA-Z.+*-]+$`)

// ValidateVersion accepts exact versions, ranges, and the "latest" sentinel.
func ValidateVersion(version string) error {
	if version == "" {
		return errors.New("version must not be empty")
	}
	if version == "latest" {
		return nil
	}
	if !versionRegex.MatchString(version) {
		return errors.Errorf("invalid version requirement: %q", version)
	}
	return nil
}
