// Package sink writes extracted entries to the filesystem.
package sink

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSink writes entries below a destination directory.
//
// Files are written to a temporary file in the same directory and renamed
// to the final path, so partially written files are never visible. All
// paths are resolved through an os.Root; entries that would escape the
// destination are rejected.
type FileSink struct {
	destDir   string
	root      *os.Root
	overwrite bool
	perm      fs.FileMode
}

// Option configures a FileSink.
type Option func(*FileSink)

// WithOverwrite controls whether existing files are replaced.
// The default replaces them.
func WithOverwrite(overwrite bool) Option {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// New creates destDir if needed and returns a sink rooted there.
func New(destDir string, opts ...Option) (*FileSink, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	s := &FileSink{
		destDir:   destDir,
		root:      root,
		overwrite: true,
		perm:      0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the destination root.
func (s *FileSink) Close() error {
	return s.root.Close()
}

// DestPath returns the host path an entry would be written to.
func (s *FileSink) DestPath(name string) string {
	return filepath.Join(s.destDir, filepath.FromSlash(CleanName(name)))
}

// CleanName converts an archive path to fs.ValidPath form. Backslashes are
// treated as separators, and leading slashes and empty elements are removed.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Trim(name, "/")
	parts := strings.Split(name, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}
	return path.Join(out...)
}

// Exists reports whether the destination for name already exists.
func (s *FileSink) Exists(name string) bool {
	_, err := s.root.Stat(filepath.FromSlash(CleanName(name)))
	return err == nil
}

// Put writes content to name, creating parent directories as needed.
// It returns (false, nil) when the file exists and overwrite is disabled.
func (s *FileSink) Put(name string, content []byte) (bool, error) {
	clean := CleanName(name)
	if clean == "" || !fs.ValidPath(clean) {
		return false, &fs.PathError{Op: "extract", Path: name, Err: fs.ErrInvalid}
	}
	rel := filepath.FromSlash(clean)

	if !s.overwrite && s.Exists(clean) {
		return false, nil
	}

	if dir := filepath.Dir(rel); dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp, tmpRel, err := createTempFile(s.root, filepath.Dir(rel), ".gpak-", s.perm)
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()           //nolint:errcheck // best-effort cleanup
		_ = s.root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("close temp file: %w", err)
	}
	if err := s.root.Rename(tmpRel, rel); err != nil {
		_ = s.root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("rename to %s: %w", s.DestPath(clean), err)
	}
	return true, nil
}

func createTempFile(root *os.Root, dir, prefix string, perm fs.FileMode) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
