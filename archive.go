package gpak

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/meigma/gpak/internal/file"
	"github.com/meigma/gpak/internal/format"
)

// Stream is the byte-stream an archive is read from. *os.File satisfies it.
type Stream = file.Stream

// Archive provides read access to an archive's entries.
//
// The directory is parsed once by Open or New; afterwards the entry set
// never changes. Reads seek the shared stream, so they are serialized
// internally; an Archive is safe for concurrent use.
type Archive struct {
	reader  *file.Reader
	entries []Entry
	index   map[string]int

	maxEntrySize uint64
	logger       *slog.Logger
}

// Open opens the archive file at path.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return New(f, opts...)
}

// New parses the archive directory from stream, starting at its current
// position. The Archive takes ownership of stream: it is closed by Close,
// or immediately if parsing fails.
//
// Parsing fails with ErrFormat for a wrong magic, with a *VersionError
// (matching ErrVersion) for an unsupported version, and with an error
// wrapping io.ErrUnexpectedEOF when the header or directory is truncated.
func New(stream Stream, opts ...Option) (*Archive, error) {
	a := &Archive{
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(a)
	}

	base, err := a.parse(stream)
	if err != nil {
		stream.Close()
		return nil, err
	}
	a.reader = file.NewReader(stream, base, file.WithMaxEntrySize(a.maxEntrySize))
	a.log().Debug("opened archive", "entries", len(a.entries), "base_offset", base)
	return a, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// maxPrealloc caps the capacity reserved from an untrusted entry count.
const maxPrealloc = 1 << 16

// parse reads the header and directory and returns the payload base offset.
func (a *Archive) parse(stream Stream) (int64, error) {
	start, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("tell: %w", err)
	}

	br := bufio.NewReader(stream)
	h, err := format.ReadHeader(br)
	if err != nil {
		return 0, err
	}

	count := int(min(h.Count, maxPrealloc))
	a.entries = make([]Entry, 0, count)
	a.index = make(map[string]int, count)

	consumed := int64(format.HeaderSize)
	for i := range h.Count {
		rec, err := format.ReadRecord(br)
		if err != nil {
			return 0, fmt.Errorf("entry %d of %d: %w", i, h.Count, err)
		}
		consumed += int64(format.RecordSize+format.PathLengthSize) + int64(rec.DeclaredPathLength)
		if rec.Clamped() {
			a.log().Warn("path too long, truncating",
				"length", rec.DeclaredPathLength,
				"max", MaxPathLength,
				"stored_path", rec.Entry.Path)
		}
		a.add(rec.Entry)
	}
	return start + consumed, nil
}

// add inserts e; a later entry with the same path replaces the earlier one.
func (a *Archive) add(e Entry) {
	if i, ok := a.index[e.Path]; ok {
		a.log().Warn("duplicate path, replacing earlier entry", "path", e.Path)
		a.entries[i] = e
		return
	}
	a.index[e.Path] = len(a.entries)
	a.entries = append(a.entries, e)
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the entry for path, if present.
func (a *Archive) Entry(path string) (Entry, bool) {
	i, ok := a.index[path]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Entries returns an iterator over all entries in directory order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Paths returns all entry paths in lexical order.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		paths = append(paths, e.Path)
	}
	slices.Sort(paths)
	return paths
}

// BaseOffset returns the stream offset of the first payload byte.
func (a *Archive) BaseOffset() int64 {
	return a.reader.Base()
}

// ReadRaw returns the stored bytes of e without decompressing them.
func (a *Archive) ReadRaw(e Entry) ([]byte, error) {
	return a.reader.ReadRaw(&e)
}

// ReadLogical returns the uncompressed content of e.
// Decoding failures and size mismatches wrap ErrDecompression.
func (a *Archive) ReadLogical(e Entry) ([]byte, error) {
	return a.reader.ReadLogical(&e)
}

// ReadFile returns the uncompressed content of the entry at name.
// A missing entry returns an *fs.PathError wrapping fs.ErrNotExist.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.Entry(name)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return a.ReadLogical(e)
}

// Close closes the underlying stream. It is safe to call more than once.
func (a *Archive) Close() error {
	return a.reader.Close()
}
