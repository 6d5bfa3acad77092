// Package format encodes and decodes the archive header and directory records.
//
// Layout (all integers little-endian):
//
//	Header:  "Gpak" | u32 version | u32 entry count
//	Record:  u32 stored size | u32 uncompressed size | u32 offset
//	         | u8 compression | u8 reserved | u16 checksum
//	         | u32 path length | path bytes
//	Payload: stored bytes of every entry, in directory order
//
// Record offsets are relative to the first byte after the last record.
package format

import "github.com/meigma/gpak/internal/packtype"

const (
	// Magic identifies an archive. It occupies the first four bytes.
	Magic = "Gpak"

	// Version is the only supported format version.
	Version uint32 = 1

	// HeaderSize is the encoded size of Header.
	HeaderSize = 12

	// RecordSize is the encoded size of the fixed part of a directory record.
	RecordSize = 16

	// PathLengthSize is the size of the path length prefix.
	PathLengthSize = 4

	// MaxPathLength is the longest path stored in a record.
	MaxPathLength = packtype.MaxPathLength
)

// TruncatePath shortens p to MaxPathLength bytes by dropping leading bytes.
// It reports whether p was shortened.
//
// Dropping the front keeps the file name but loses the directory prefix.
// The cut is byte based and may split a multi-byte rune.
func TruncatePath(p string) (string, bool) {
	if len(p) <= MaxPathLength {
		return p, false
	}
	return p[len(p)-MaxPathLength:], true
}

// EncodedRecordSize returns the number of bytes a record with path p occupies.
func EncodedRecordSize(p string) int {
	return RecordSize + PathLengthSize + len(p)
}
