package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/gpak/internal/packtype"
)

// maxDecoderMemory caps the memory a single zstd frame may claim while
// decoding, matching the default per-entry read limit.
const maxDecoderMemory = 1 << 30

// zstd.Encoder is safe for concurrent EncodeAll.
var zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
	)
})

// Streaming decoders are reused; each one decodes a single entry at a time.
var zstdDecoders = sync.Pool{
	New: func() any {
		dec, err := newZstdDecoder(nil)
		if err != nil {
			return nil
		}
		return dec
	},
}

func newZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	return zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(maxDecoderMemory),
	)
}

// getZstdDecoder returns a decoder reading from r and its release function.
func getZstdDecoder(r io.Reader) (*zstd.Decoder, func(), error) {
	dec, ok := zstdDecoders.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		fresh, err := newZstdDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return fresh, fresh.Close, nil
	}
	if err := dec.Reset(r); err != nil {
		dec.Close()
		fresh, err := newZstdDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return fresh, fresh.Close, nil
	}
	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		zstdDecoders.Put(dec)
	}, nil
}

type zstdCodec struct{}

func (zstdCodec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	enc, err := zstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

// Decompress never produces more than size bytes: a frame that declares
// a different content size is rejected from its header, and the stream
// is read into a buffer of exactly size bytes followed by an end check.
func (zstdCodec) Decompress(src []byte, size int) ([]byte, error) {
	var h zstd.Header
	if err := h.Decode(src); err != nil {
		return nil, fmt.Errorf("%w: zstd header: %v", packtype.ErrDecompression, err)
	}
	if h.HasFCS && h.FrameContentSize != uint64(size) { //nolint:gosec // size is non-negative
		return nil, fmt.Errorf("%w: zstd: frame declares %d bytes, expected %d",
			packtype.ErrDecompression, h.FrameContentSize, size)
	}

	dec, release, err := getZstdDecoder(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: create zstd decoder: %v", packtype.ErrDecompression, err)
	}
	defer release()

	out := make([]byte, size)
	n, err := io.ReadFull(dec, out)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: zstd: got %d bytes, expected %d", packtype.ErrDecompression, n, size)
		}
		return nil, fmt.Errorf("%w: zstd: %v", packtype.ErrDecompression, err)
	}

	var extra [1]byte
	switch _, err := io.ReadFull(dec, extra[:]); {
	case errors.Is(err, io.EOF):
		return out, nil
	case err == nil:
		return nil, fmt.Errorf("%w: zstd: more than %d bytes", packtype.ErrDecompression, size)
	default:
		return nil, fmt.Errorf("%w: zstd: %v", packtype.ErrDecompression, err)
	}
}
