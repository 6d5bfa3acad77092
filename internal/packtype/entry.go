package packtype

// MaxPathLength is the longest path, in bytes, stored for an entry.
const MaxPathLength = 1024

// Entry describes one file in the archive.
type Entry struct {
	// Path is the slash-separated path relative to the archive root.
	Path string

	// StoredSize is the number of payload bytes in the archive.
	// For compressed entries, this is the compressed size.
	StoredSize uint32

	// UncompressedSize is the logical content size.
	// Equal to StoredSize for uncompressed entries.
	UncompressedSize uint32

	// Offset is the payload position relative to the start of the payload region.
	Offset uint32

	// Compression is the algorithm used for the stored bytes.
	Compression Compression

	// Checksum is the CRC-16 of the stored bytes.
	Checksum uint16
}

// Ratio returns StoredSize as a percentage of UncompressedSize.
// Empty entries report 100.
func (e *Entry) Ratio() float64 {
	if e.UncompressedSize == 0 {
		return 100
	}
	return float64(e.StoredSize) / float64(e.UncompressedSize) * 100
}
