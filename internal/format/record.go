package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/gpak/internal/packtype"
)

// AppendRecord appends the encoded directory record for e to dst.
// The caller must have truncated e.Path to MaxPathLength.
func AppendRecord(dst []byte, e *packtype.Entry) []byte {
	var fixed [RecordSize + PathLengthSize]byte
	binary.LittleEndian.PutUint32(fixed[0:4], e.StoredSize)
	binary.LittleEndian.PutUint32(fixed[4:8], e.UncompressedSize)
	binary.LittleEndian.PutUint32(fixed[8:12], e.Offset)
	fixed[12] = byte(e.Compression)
	fixed[13] = 0
	binary.LittleEndian.PutUint16(fixed[14:16], e.Checksum)
	binary.LittleEndian.PutUint32(fixed[16:20], uint32(len(e.Path))) //nolint:gosec // bounded by MaxPathLength
	dst = append(dst, fixed[:]...)
	return append(dst, e.Path...)
}

// EncodeDirectory serializes the header followed by one record per entry.
func EncodeDirectory(entries []packtype.Entry) ([]byte, error) {
	if uint64(len(entries)) > uint64(^uint32(0)) {
		return nil, packtype.ErrSizeOverflow
	}
	size := HeaderSize
	for i := range entries {
		if len(entries[i].Path) > MaxPathLength {
			return nil, fmt.Errorf("entry %d: path length %d exceeds %d", i, len(entries[i].Path), MaxPathLength)
		}
		size += EncodedRecordSize(entries[i].Path)
	}

	h := NewHeader(uint32(len(entries))) //nolint:gosec // checked above
	buf := make([]byte, 0, size)
	buf = append(buf, h.Encode()...)
	for i := range entries {
		buf = AppendRecord(buf, &entries[i])
	}
	return buf, nil
}

// Record is a decoded directory record.
type Record struct {
	Entry packtype.Entry

	// DeclaredPathLength is the path length stored in the record. It is
	// larger than len(Entry.Path) when the path was clamped on read.
	DeclaredPathLength uint32
}

// Clamped reports whether the stored path was longer than MaxPathLength.
func (r *Record) Clamped() bool {
	return r.DeclaredPathLength > MaxPathLength
}

// ReadRecord reads one directory record from r.
//
// A declared path length above MaxPathLength is clamped: the leading excess
// bytes are skipped and the trailing MaxPathLength bytes are kept, matching
// the writer's truncation and leaving r positioned at the next record.
func ReadRecord(r io.Reader) (Record, error) {
	var fixed [RecordSize + PathLengthSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Record{}, fmt.Errorf("read record: %w", shortRead(err))
	}

	rec := Record{
		Entry: packtype.Entry{
			StoredSize:       binary.LittleEndian.Uint32(fixed[0:4]),
			UncompressedSize: binary.LittleEndian.Uint32(fixed[4:8]),
			Offset:           binary.LittleEndian.Uint32(fixed[8:12]),
			Compression:      packtype.Compression(fixed[12]),
			Checksum:         binary.LittleEndian.Uint16(fixed[14:16]),
		},
		DeclaredPathLength: binary.LittleEndian.Uint32(fixed[16:20]),
	}

	length := rec.DeclaredPathLength
	if rec.Clamped() {
		excess := int64(length - MaxPathLength)
		if _, err := io.CopyN(io.Discard, r, excess); err != nil {
			return Record{}, fmt.Errorf("skip path: %w", shortRead(err))
		}
		length = MaxPathLength
	}

	path := make([]byte, length)
	if _, err := io.ReadFull(r, path); err != nil {
		return Record{}, fmt.Errorf("read path: %w", shortRead(err))
	}
	rec.Entry.Path = string(path)
	return rec, nil
}
