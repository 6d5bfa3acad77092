package codec

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/meigma/gpak/internal/packtype"
)

// hcPool reuses high-compression encoders; each holds sizeable match tables.
var hcPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	},
}

// lz4HC produces raw LZ4 blocks with the HC encoder at level 9.
type lz4HC struct{}

func (lz4HC) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	c := hcPool.Get().(*lz4.CompressorHC) //nolint:errcheck // pool only holds *CompressorHC
	defer hcPool.Put(c)

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// Zero means the block did not compress.
	if n == 0 {
		return nil, nil
	}
	return dst[:n:n], nil
}

func (lz4HC) Decompress(src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	if size == 0 && len(src) == 0 {
		return dst, nil
	}
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", packtype.ErrDecompression, err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: lz4: got %d bytes, expected %d", packtype.ErrDecompression, n, size)
	}
	return dst, nil
}
