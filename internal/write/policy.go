// Package write implements the build-time compression decision for entries.
package write

import (
	"fmt"

	"github.com/meigma/gpak/internal/codec"
	"github.com/meigma/gpak/internal/packtype"
)

// Threshold returns the compressed size at or above which compression is
// rejected for an input of n bytes: n/2 + n/4 in integer arithmetic.
func Threshold(n int) int {
	return n/2 + n/4
}

// Accept reports whether a compressed size is small enough to store the
// compressed form: strictly less than Threshold(uncompressed).
func Accept(compressed, uncompressed int) bool {
	return compressed < Threshold(uncompressed)
}

// Apply decides how raw is stored.
//
// With CompressionNone, raw is returned unchanged. Otherwise raw is
// compressed with the requested codec and the compressed form is kept only
// when Accept holds; in every other case raw is returned with
// CompressionNone. The returned slice aliases raw when stored raw.
func Apply(raw []byte, requested packtype.Compression) ([]byte, packtype.Compression, error) {
	if requested == packtype.CompressionNone {
		return raw, packtype.CompressionNone, nil
	}
	c, err := codec.For(requested)
	if err != nil {
		return nil, 0, err
	}
	compressed, err := c.Compress(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("compress: %w", err)
	}
	if compressed == nil || !Accept(len(compressed), len(raw)) {
		return raw, packtype.CompressionNone, nil
	}
	return compressed, requested, nil
}
