// Package file reads entry payloads from an archive stream.
package file

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/meigma/gpak/internal/codec"
	"github.com/meigma/gpak/internal/packtype"
	"github.com/meigma/gpak/internal/sizing"
)

// DefaultMaxEntrySize is the default per-entry allocation limit (1GB).
const DefaultMaxEntrySize = 1 << 30

// Stream is the byte-stream backend an archive is read from.
// The current position (tell) is Seek(0, io.SeekCurrent).
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Reader reads payloads from a Stream.
//
// Reads seek and then read, so the Reader serializes access to the stream.
type Reader struct {
	mu           sync.Mutex
	stream       Stream
	base         int64
	maxEntrySize uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxEntrySize sets the largest stored or uncompressed size a single
// read will allocate. Set to 0 to disable the limit.
func WithMaxEntrySize(limit uint64) Option {
	return func(r *Reader) {
		r.maxEntrySize = limit
	}
}

// NewReader creates a Reader for the payload region starting at base.
func NewReader(stream Stream, base int64, opts ...Option) *Reader {
	r := &Reader{
		stream:       stream,
		base:         base,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Base returns the stream offset of the payload region.
func (r *Reader) Base() int64 {
	return r.base
}

// ReadRaw returns exactly the stored bytes of entry, without decompression.
func (r *Reader) ReadRaw(entry *packtype.Entry) ([]byte, error) {
	if sizing.Exceeds(entry.StoredSize, r.maxEntrySize) {
		return nil, fmt.Errorf("read %s: %w", entry.Path, packtype.ErrSizeOverflow)
	}
	size, err := sizing.ToInt(entry.StoredSize, packtype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	buf := make([]byte, size)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, errClosed)
	}
	if _, err := r.stream.Seek(r.base+int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", entry.Path, err)
	}
	n, err := io.ReadFull(r.stream, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read %s: short read (%d of %d bytes): %w", entry.Path, n, size, io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return buf, nil
}

// ReadLogical returns the uncompressed content of entry.
//
// Compressed payloads are decoded into a buffer of exactly UncompressedSize
// bytes; codec failures and size mismatches wrap packtype.ErrDecompression.
func (r *Reader) ReadLogical(entry *packtype.Entry) ([]byte, error) {
	if err := ValidateForRead(entry, r.maxEntrySize); err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	stored, err := r.ReadRaw(entry)
	if err != nil {
		return nil, err
	}
	size, err := sizing.ToInt(entry.UncompressedSize, packtype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	content, err := codec.Decode(entry.Compression, stored, size)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return content, nil
}

// Close closes the stream. Further reads fail.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return nil
	}
	err := r.stream.Close()
	r.stream = nil
	return err
}

var errClosed = errors.New("archive closed")

// ValidateForRead checks entry metadata before any bytes are read:
//   - sizes are within maxEntrySize (if limit > 0)
//   - uncompressed entries have StoredSize == UncompressedSize
//   - the compression tag is known
func ValidateForRead(entry *packtype.Entry, maxEntrySize uint64) error {
	if sizing.Exceeds(entry.StoredSize, maxEntrySize) || sizing.Exceeds(entry.UncompressedSize, maxEntrySize) {
		return packtype.ErrSizeOverflow
	}
	if !entry.Compression.Valid() {
		return fmt.Errorf("%w: %w: tag %d", packtype.ErrDecompression, packtype.ErrUnknownCompression, entry.Compression)
	}
	if entry.Compression == packtype.CompressionNone && entry.StoredSize != entry.UncompressedSize {
		return fmt.Errorf("%w: size mismatch (stored %d, uncompressed %d)",
			packtype.ErrDecompression, entry.StoredSize, entry.UncompressedSize)
	}
	return nil
}
