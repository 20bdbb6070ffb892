package snapshot

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// Open returns an existing Snapshot at the specified path.
func Open(path rcmpath.AbsoluteSystemPath) (*Snapshot, error) {
	handle, err := path.Open()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Path:   path,
		handle: handle,
	}, nil
}

// Restore extracts the snapshot to a disk location, returning the
// anchored paths it wrote. Entries that would escape the anchor are
// rejected.
func (s *Snapshot) Restore(anchor rcmpath.AbsoluteSystemPath) ([]rcmpath.AnchoredSystemPath, error) {
	gzr, err := gzip.NewReader(s.handle)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)

	if err := anchor.MkdirAll(); err != nil {
		return nil, err
	}

	// Symlinks restore last so their targets exist first.
	var symlinks []*tar.Header

	restored := make([]rcmpath.AnchoredSystemPath, 0)
	for {
		header, trErr := tr.Next()
		if trErr == io.EOF {
			break
		}
		if trErr != nil {
			return restored, trErr
		}

		name, nameErr := checkName(header.Name)
		if nameErr != nil {
			return restored, nameErr
		}
		target := name.RestoreAnchor(anchor)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := target.MkdirAll(); err != nil {
				return restored, err
			}
			restored = append(restored, name)
		case tar.TypeReg:
			if err := target.Dir().MkdirAll(); err != nil {
				return restored, err
			}
			file, openErr := target.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode))
			if openErr != nil {
				return restored, openErr
			}
			if _, err := io.Copy(file, tr); err != nil {
				file.Close()
				return restored, err
			}
			if err := file.Close(); err != nil {
				return restored, err
			}
			restored = append(restored, name)
		case tar.TypeSymlink:
			symlinks = append(symlinks, header)
		default:
			return restored, errUnsupportedFileType
		}
	}

	for _, header := range symlinks {
		name, nameErr := checkName(header.Name)
		if nameErr != nil {
			return restored, nameErr
		}
		if err := checkLinkTarget(name, header.Linkname); err != nil {
			return restored, err
		}
		target := name.RestoreAnchor(anchor)
		if err := target.Dir().MkdirAll(); err != nil {
			return restored, err
		}
		target.Remove()
		if err := target.Symlink(filepath.FromSlash(header.Linkname)); err != nil {
			return restored, err
		}
		restored = append(restored, name)
	}
	return restored, nil
}

// checkName rejects entry names that are absolute or that climb out of
// the anchor.
func checkName(name string) (rcmpath.AnchoredSystemPath, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errTraversal
	}
	return rcmpath.AnchoredSystemPath(cleaned), nil
}

// checkLinkTarget rejects symlink targets that resolve outside of the
// anchor.
func checkLinkTarget(name rcmpath.AnchoredSystemPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return errTraversal
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(name.ToString()), filepath.FromSlash(linkname)))
	if resolved == ".." || strings.HasPrefix(resolved, ".."+string(filepath.Separator)) {
		return errTraversal
	}
	return nil
}
