// Package snapshot archives and restores workspace state as gzipped
// tarballs with deterministic contents.
package snapshot

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

var (
	errTraversal           = errors.New("tar attempts to write outside of directory")
	errUnsupportedFileType = errors.New("attempted to archive unsupported file type")
)

// Snapshot is a tar utility with deterministic headers.
type Snapshot struct {
	// Path is the location on disk for the Snapshot.
	Path rcmpath.AbsoluteSystemPath

	// For creation.
	sha    hash.Hash
	tw     *tar.Writer
	gzw    *gzip.Writer
	buffer *bufio.Writer
	handle *os.File
}

// FileName builds the on-disk name for a new snapshot of the named
// workspace.
func FileName(workspaceName string, now time.Time) string {
	return fmt.Sprintf("%v-%v.tar.gz", slug.Make(workspaceName), now.UTC().Format("20060102T150405Z"))
}

// Create makes a new Snapshot at the specified path.
func Create(path rcmpath.AbsoluteSystemPath) (*Snapshot, error) {
	handle, err := path.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Path:   path,
		handle: handle,
	}
	snapshot.init()
	return snapshot, nil
}

// init wires the writers end-to-end:
// tar.Writer -> gzip.Writer -> bufio.Writer -> file
func (s *Snapshot) init() {
	s.buffer = bufio.NewWriterSize(s.handle, 1<<20)
	s.gzw = gzip.NewWriter(s.buffer)
	s.tw = tar.NewWriter(s.gzw)
}

// Close flushes and closes any open pipes.
func (s *Snapshot) Close() error {
	if s.tw != nil {
		if err := s.tw.Close(); err != nil {
			return err
		}
	}
	if s.gzw != nil {
		if err := s.gzw.Close(); err != nil {
			return err
		}
	}
	if s.buffer != nil {
		if err := s.buffer.Flush(); err != nil {
			return err
		}
	}
	if s.handle != nil {
		if err := s.handle.Close(); err != nil {
			return err
		}
	}
	return nil
}

// GetSha returns the SHA-512 hash for the Snapshot.
func (s *Snapshot) GetSha() ([]byte, error) {
	if s.sha != nil {
		return s.sha.Sum(nil), nil
	}

	if _, err := s.handle.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	sha := sha512.New()
	if _, err := io.Copy(sha, s.handle); err != nil {
		return nil, err
	}
	s.sha = sha
	return s.sha.Sum(nil), nil
}

// AddFile adds one workspace file to the tar.
func (s *Snapshot) AddFile(fsAnchor rcmpath.AbsoluteSystemPath, filePath rcmpath.AnchoredSystemPath) error {
	sourcePath := filePath.RestoreAnchor(fsAnchor)

	fileInfo, err := sourcePath.Lstat()
	if err != nil {
		return err
	}

	var link string
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		linkTarget, readlinkErr := sourcePath.Readlink()
		if readlinkErr != nil {
			return readlinkErr
		}
		link = linkTarget
	}

	header, err := tar.FileInfoHeader(fileInfo, link)
	if err != nil {
		return err
	}
	header.Name = filePath.ToUnixPath()

	if header.Typeflag != tar.TypeReg && header.Typeflag != tar.TypeDir && header.Typeflag != tar.TypeSymlink {
		return errUnsupportedFileType
	}

	// Consistent creation.
	header.Uid = 0
	header.Gid = 0
	header.Uname = ""
	header.Gname = ""
	header.AccessTime = time.Unix(0, 0)
	header.ModTime = time.Unix(0, 0)
	header.ChangeTime = time.Unix(0, 0)

	if err := s.tw.WriteHeader(header); err != nil {
		return err
	}

	if header.Typeflag == tar.TypeReg && header.Size > 0 {
		sourceFile, err := sourcePath.Open()
		if err != nil {
			return err
		}
		if _, err := io.Copy(s.tw, sourceFile); err != nil {
			sourceFile.Close()
			return err
		}
		return sourceFile.Close()
	}
	return nil
}
