package gpak

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source supplies one archive entry.
//
// Build opens a source once while planning and, for entries stored
// uncompressed, once more while writing the payload. Open must return the
// same content both times.
type Source interface {
	// Path is the slash-separated archive path of the entry.
	Path() string

	// Open returns a reader for the entry content.
	Open() (io.ReadCloser, error)
}

// BytesSource returns a Source for in-memory content.
func BytesSource(path string, data []byte) Source {
	return bytesSource{path: path, data: data}
}

type bytesSource struct {
	path string
	data []byte
}

func (s bytesSource) Path() string { return s.path }

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// FileSource returns a Source reading name from root. The archive path is
// name with forward slashes.
func FileSource(root *os.Root, name string) Source {
	return rootSource{root: root, name: filepath.ToSlash(name)}
}

type rootSource struct {
	root *os.Root
	name string
}

func (s rootSource) Path() string { return s.name }

func (s rootSource) Open() (io.ReadCloser, error) {
	return s.root.Open(filepath.FromSlash(s.name))
}

// FSSource returns a Source reading name from fsys.
func FSSource(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Path() string { return s.name }

func (s fsSource) Open() (io.ReadCloser, error) {
	return s.fsys.Open(s.name)
}
