package gpak

import "github.com/meigma/gpak/internal/packtype"

// Errors re-exported from packtype.
var (
	// ErrFormat is returned when a stream does not start with the archive magic.
	ErrFormat = packtype.ErrFormat

	// ErrVersion is returned when the archive version is not supported.
	// Use errors.As with *VersionError to get the version found.
	ErrVersion = packtype.ErrVersion

	// ErrDecompression is returned when an entry cannot be decoded to its declared size.
	ErrDecompression = packtype.ErrDecompression

	// ErrChecksumMismatch is returned when stored bytes do not match the recorded checksum.
	ErrChecksumMismatch = packtype.ErrChecksumMismatch

	// ErrMissingSource is returned when a source cannot be read while building.
	ErrMissingSource = packtype.ErrMissingSource

	// ErrSizeOverflow is returned when a size does not fit the format's 32-bit fields
	// or exceeds the configured read limit.
	ErrSizeOverflow = packtype.ErrSizeOverflow

	// ErrUnknownCompression is returned for unknown compression tags or names.
	ErrUnknownCompression = packtype.ErrUnknownCompression
)

// VersionError reports an unsupported archive version.
type VersionError = packtype.VersionError
