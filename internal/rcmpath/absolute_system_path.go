package rcmpath

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// AbsoluteSystemPath is an absolute path using system separators.
type AbsoluteSystemPath string

// _dirPermissions are the default permission bits we apply to directories.
const _dirPermissions = os.ModeDir | 0775

// _nonRelativeSentinel is the leading sentinel that indicates traversal.
const _nonRelativeSentinel = ".." + string(filepath.Separator)

// ToString returns a string representation of this path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// Join appends relative path segments to this AbsoluteSystemPath.
func (p AbsoluteSystemPath) Join(args ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(args...)))
}

// Dir implements filepath.Dir() for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// Base implements filepath.Base for an absolute path.
func (p AbsoluteSystemPath) Base() string {
	return filepath.Base(p.ToString())
}

// RelativeTo calculates the relative path between two AbsoluteSystemPaths.
func (p AbsoluteSystemPath) RelativeTo(basePath AbsoluteSystemPath) (AnchoredSystemPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return AnchoredSystemPath(processed), err
}

// ContainsPath returns true if this absolute path is a parent of the argument.
func (p AbsoluteSystemPath) ContainsPath(other AbsoluteSystemPath) (bool, error) {
	// filepath.Rel can return a path that starts with "../" or equivalent.
	// Rely on the stdlib to generate a relative path and then check
	// if the first step is "../".
	rel, err := filepath.Rel(p.ToString(), other.ToString())
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(rel, _nonRelativeSentinel), nil
}

// Mkdir implements os.Mkdir(p, perm).
func (p AbsoluteSystemPath) Mkdir(perm os.FileMode) error {
	return os.Mkdir(p.ToString(), perm)
}

// MkdirAll implements os.MkdirAll(p, perm).
func (p AbsoluteSystemPath) MkdirAll() error {
	return os.MkdirAll(p.ToString(), _dirPermissions)
}

// EnsureDir ensures that the directory containing this file exists.
func (p AbsoluteSystemPath) EnsureDir() error {
	dir := p.Dir()
	err := os.MkdirAll(dir.ToString(), _dirPermissions)
	if err != nil && dir.FileExists() {
		// It looks like this is a file and not a directory. Attempt to remove it;
		// this can happen if a rule changed from outputting a file to a directory.
		if err2 := dir.Remove(); err2 == nil {
			err = os.MkdirAll(dir.ToString(), _dirPermissions)
		} else {
			return err
		}
	}
	return err
}

// Open implements os.Open(p) for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Open() (*os.File, error) {
	return os.Open(p.ToString())
}

// OpenFile implements os.OpenFile for an absolute path.
func (p AbsoluteSystemPath) OpenFile(flags int, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(p.ToString(), flags, mode)
}

// ReadFile reads the contents of the given file.
func (p AbsoluteSystemPath) ReadFile() ([]byte, error) {
	return ioutil.ReadFile(p.ToString())
}

// WriteFile writes the contents of the given file.
func (p AbsoluteSystemPath) WriteFile(contents []byte, mode os.FileMode) error {
	return ioutil.WriteFile(p.ToString(), contents, mode)
}

// ReadDir lists the directory's entries.
func (p AbsoluteSystemPath) ReadDir() ([]os.DirEntry, error) {
	return os.ReadDir(p.ToString())
}

// Lstat implements os.Lstat for an absolute path.
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}

// Readlink implements os.Readlink for an absolute path.
func (p AbsoluteSystemPath) Readlink() (string, error) {
	return os.Readlink(p.ToString())
}

// Symlink implements os.Symlink(target, p) for an absolute path.
func (p AbsoluteSystemPath) Symlink(target string) error {
	return os.Symlink(target, p.ToString())
}

// Remove removes the file or (empty) directory at the given path.
func (p AbsoluteSystemPath) Remove() error {
	return os.Remove(p.ToString())
}

// RemoveAll implements os.RemoveAll for absolute paths.
func (p AbsoluteSystemPath) RemoveAll() error {
	return os.RemoveAll(p.ToString())
}

// Exists returns true if the given path exists.
func (p AbsoluteSystemPath) Exists() bool {
	_, err := p.Lstat()
	return err == nil
}

// DirExists returns true if the given path exists and is a directory.
func (p AbsoluteSystemPath) DirExists() bool {
	info, err := p.Lstat()
	return err == nil && info.IsDir()
}

// FileExists returns true if the given path exists and is a file.
func (p AbsoluteSystemPath) FileExists() bool {
	info, err := p.Lstat()
	return err == nil && !info.IsDir()
}

// Findup checks this directory and all parent directories for a file,
// returning the directory that holds it, or "" when no parent does.
func (p AbsoluteSystemPath) Findup(name string) (AbsoluteSystemPath, error) {
	found, err := FindupFrom(name, p.ToString())
	return AbsoluteSystemPath(found), err
}

// AbsoluteSystemPathFromUpstream takes a path string from an external
// API that we assume to be absolute and stamps it without verification.
func AbsoluteSystemPathFromUpstream(path string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.FromSlash(path))
}

// CheckedToAbsoluteSystemPath verifies that the string is absolute
// before stamping it.
func CheckedToAbsoluteSystemPath(path string) (AbsoluteSystemPath, bool) {
	if !filepath.IsAbs(path) {
		return "", false
	}
	return AbsoluteSystemPath(path), true
}

// GetCwd returns the calculated working directory after traversing symlinks.
func GetCwd() (AbsoluteSystemPath, error) {
	cwdRaw, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return AbsoluteSystemPath(cwdRaw), nil
}
