// Package codec provides the block codecs used for compressed entries.
//
// Every codec works on whole buffers: an entry is compressed in one call
// and decompressed into a buffer of exactly its declared size.
package codec

import (
	"fmt"

	"github.com/meigma/gpak/internal/packtype"
)

// Codec compresses and decompresses whole entry payloads.
type Codec interface {
	// Compress returns the compressed form of src. A nil result with a nil
	// error means the codec could not make src smaller.
	Compress(src []byte) ([]byte, error)

	// Decompress decodes src into a buffer of exactly size bytes.
	// It fails with packtype.ErrDecompression when the output length differs.
	Decompress(src []byte, size int) ([]byte, error)
}

var (
	lz4hc    Codec = lz4HC{}
	zstdImpl Codec = zstdCodec{}
)

// For returns the codec for a compression tag.
func For(tag packtype.Compression) (Codec, error) {
	switch tag {
	case packtype.CompressionLZ4HC:
		return lz4hc, nil
	case packtype.CompressionZstd:
		return zstdImpl, nil
	default:
		return nil, fmt.Errorf("%w: %s", packtype.ErrUnknownCompression, tag)
	}
}

// Decode returns the logical content of stored bytes with the given tag.
// Uncompressed payloads are returned as-is after a size check.
func Decode(tag packtype.Compression, stored []byte, size int) ([]byte, error) {
	if tag == packtype.CompressionNone {
		if len(stored) != size {
			return nil, fmt.Errorf("%w: raw size %d does not match declared %d",
				packtype.ErrDecompression, len(stored), size)
		}
		return stored, nil
	}
	c, err := For(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", packtype.ErrDecompression, err)
	}
	return c.Decompress(stored, size)
}
