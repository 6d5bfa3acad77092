package packtype

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when a stream does not start with the archive magic.
	ErrFormat = errors.New("gpak: not a gpak archive")

	// ErrVersion is returned when the archive version is not supported.
	ErrVersion = errors.New("gpak: unsupported archive version")

	// ErrDecompression is returned when an entry cannot be decoded to its declared size.
	ErrDecompression = errors.New("gpak: decompression failed")

	// ErrChecksumMismatch is returned when stored bytes do not match the recorded checksum.
	ErrChecksumMismatch = errors.New("gpak: checksum mismatch")

	// ErrMissingSource is returned when a source cannot be read while writing the archive.
	ErrMissingSource = errors.New("gpak: source unreadable")

	// ErrSizeOverflow is returned when byte counts exceed what the format can address.
	ErrSizeOverflow = errors.New("gpak: size overflow")

	// ErrUnknownCompression is returned for compression tags the reader does not know.
	ErrUnknownCompression = errors.New("gpak: unknown compression")
)

// VersionError reports the version found in an archive header.
type VersionError struct {
	Version uint32
	Want    uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("gpak: unsupported archive version %d (want %d)", e.Version, e.Want)
}

// Is makes errors.Is(err, ErrVersion) true for any VersionError.
func (e *VersionError) Is(target error) bool {
	return target == ErrVersion
}
