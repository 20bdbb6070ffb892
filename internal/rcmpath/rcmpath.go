// Package rcmpath teaches the Go type system about the two kinds of
// paths rcm works with:
// - AbsoluteSystemPath: absolute, including volume root, system separators.
// - AnchoredSystemPath: absolute starting at a particular anchor (the
//   workspace root, a snapshot root), stored without a leading separator.
//
// Having the type system track which is which keeps anchor/absolute
// confusion out of the archive and workspace code.
package rcmpath

import (
	"path/filepath"
)

// AnchoredSystemPath is a path stamped as relative to some anchor.
type AnchoredSystemPath string

// ToString returns a string representation of this path.
// Used for interfacing with APIs that require a string.
func (p AnchoredSystemPath) ToString() string {
	return string(p)
}

// ToUnixPath converts the path to use unix separators, the form stored
// inside archives.
func (p AnchoredSystemPath) ToUnixPath() string {
	return filepath.ToSlash(string(p))
}

// RestoreAnchor prefixes the anchor back on, producing an absolute path.
func (p AnchoredSystemPath) RestoreAnchor(anchor AbsoluteSystemPath) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(anchor.ToString(), p.ToString()))
}

// AnchoredSystemPathFromUpstream stamps a string from an external API
// as anchored without any verification.
func AnchoredSystemPathFromUpstream(path string) AnchoredSystemPath {
	return AnchoredSystemPath(filepath.FromSlash(path))
}
