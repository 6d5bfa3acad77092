// Package testutil provides shared helpers for archive tests.
package testutil

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// MockStream implements an in-memory, seekable byte stream for tests.
type MockStream struct {
	*bytes.Reader

	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewMockStream returns a stream backed by the provided data.
func NewMockStream(data []byte) *MockStream {
	return &MockStream{Reader: bytes.NewReader(data), data: data}
}

// Close marks the stream closed. Closing twice is an error, which lets tests
// catch double closes.
func (m *MockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("mock stream: already closed")
	}
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Bytes returns the backing slice for tests that need to inspect data.
func (m *MockStream) Bytes() []byte {
	return m.data
}

// FlipByte returns a copy of data with the byte at off inverted.
func FlipByte(data []byte, off int) []byte {
	out := bytes.Clone(data)
	out[off] ^= 0xFF
	return out
}

// RandomBytes returns n bytes from a deterministic source.
func RandomBytes(n int, seed int64) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(data) //nolint:gosec // deterministic test data
	return data
}

// WriteFiles creates files under dir. Keys are slash-separated relative paths.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
}

// ReadTree returns every regular file under dir keyed by slash-separated
// relative path.
func ReadTree(tb testing.TB, dir string) map[string][]byte {
	tb.Helper()
	out := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		tb.Fatalf("read tree %s: %v", dir, err)
	}
	return out
}
