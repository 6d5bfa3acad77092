package packtype

import "fmt"

// Compression identifies how an entry's payload is stored.
//
// Values are written as a single byte in each directory record; changing
// them breaks compatibility with existing archives.
type Compression uint8

const (
	// CompressionNone stores the payload as raw bytes.
	CompressionNone Compression = 0

	// CompressionLZ4HC stores an LZ4 block produced by the high-compression encoder.
	CompressionLZ4HC Compression = 1

	// CompressionZstd stores a zstd frame. Only produced when requested explicitly.
	CompressionZstd Compression = 2
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4HC:
		return "lz4hc"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Valid reports whether c is a known compression tag.
func (c Compression) Valid() bool {
	return c <= CompressionZstd
}

// ParseCompression parses a compression name as printed by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "raw":
		return CompressionNone, nil
	case "lz4hc", "lz4":
		return CompressionLZ4HC, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}
