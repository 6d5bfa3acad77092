package codec

import (
	"bytes"
	"crypto/rand"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gpak/internal/packtype"
)

func TestForKnownTags(t *testing.T) {
	t.Parallel()

	for _, tag := range []packtype.Compression{packtype.CompressionLZ4HC, packtype.CompressionZstd} {
		c, err := For(tag)
		require.NoError(t, err, tag.String())
		assert.NotNil(t, c)
	}

	_, err := For(packtype.CompressionNone)
	require.ErrorIs(t, err, packtype.ErrUnknownCompression)
	_, err = For(packtype.Compression(9))
	require.ErrorIs(t, err, packtype.ErrUnknownCompression)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("game asset payload "), 400)
	for _, tag := range []packtype.Compression{packtype.CompressionLZ4HC, packtype.CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			t.Parallel()

			c, err := For(tag)
			require.NoError(t, err)

			compressed, err := c.Compress(content)
			require.NoError(t, err)
			require.NotNil(t, compressed)
			assert.Less(t, len(compressed), len(content))

			out, err := Decode(tag, compressed, len(content))
			require.NoError(t, err)
			assert.Equal(t, content, out)
		})
	}
}

func TestLZ4HCProducesStandardBlock(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte{'z'}, 1000)
	compressed, err := lz4hc.Compress(content)
	require.NoError(t, err)

	// Any LZ4 block decoder must accept the output.
	dst := make([]byte, len(content))
	n, err := lz4.UncompressBlock(compressed, dst)
	require.NoError(t, err)
	assert.Equal(t, len(content), n)
	assert.Equal(t, content, dst)
}

func TestCompressEmpty(t *testing.T) {
	t.Parallel()

	out, err := lz4hc.Compress(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = zstdImpl.Compress([]byte{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeSizeMismatch(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("abcd"), 256)
	for _, tag := range []packtype.Compression{packtype.CompressionLZ4HC, packtype.CompressionZstd} {
		c, err := For(tag)
		require.NoError(t, err)
		compressed, err := c.Compress(content)
		require.NoError(t, err)

		_, err = Decode(tag, compressed, len(content)+1)
		assert.ErrorIs(t, err, packtype.ErrDecompression, tag.String())
	}
}

func TestDecodeCorrupt(t *testing.T) {
	t.Parallel()

	garbage := make([]byte, 64)
	_, err := rand.Read(garbage)
	require.NoError(t, err)

	_, err = Decode(packtype.CompressionZstd, garbage, 1000)
	require.ErrorIs(t, err, packtype.ErrDecompression)

	_, err = Decode(packtype.Compression(7), garbage, 64)
	require.ErrorIs(t, err, packtype.ErrDecompression)
}

func TestDecodeRaw(t *testing.T) {
	t.Parallel()

	out, err := Decode(packtype.CompressionNone, []byte("raw"), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), out)

	_, err = Decode(packtype.CompressionNone, []byte("raw"), 4)
	assert.ErrorIs(t, err, packtype.ErrDecompression)
}

// zstdStream encodes src without a frame content size.
func zstdStream(t *testing.T, src []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithWindowSize(1<<20), zstd.WithEncoderConcurrency(1))
	require.NoError(t, err)
	_, err = enc.Write(src)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

// A small declared size bounds decoding no matter how large the frame
// expands; neither frame below may be decoded in full.
func TestZstdDecodeBoundedByDeclaredSize(t *testing.T) {
	const expanded = 64 << 20
	zeros := make([]byte, expanded)

	withSize, err := zstdImpl.Compress(zeros)
	require.NoError(t, err)
	streamed := zstdStream(t, zeros)

	var hdr zstd.Header
	require.NoError(t, hdr.Decode(withSize))
	require.True(t, hdr.HasFCS)
	require.NoError(t, hdr.Decode(streamed))
	require.False(t, hdr.HasFCS)

	for name, frame := range map[string][]byte{"content size": withSize, "streamed": streamed} {
		runtime.GC()
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)

		_, err := Decode(packtype.CompressionZstd, frame, 10)

		runtime.ReadMemStats(&after)
		require.ErrorIs(t, err, packtype.ErrDecompression, name)
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(expanded/4), name)
	}
}

func TestZstdDecodeStreamedFrame(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("streamed frame "), 300)
	frame := zstdStream(t, content)

	out, err := Decode(packtype.CompressionZstd, frame, len(content))
	require.NoError(t, err)
	assert.Equal(t, content, out)

	_, err = Decode(packtype.CompressionZstd, frame, len(content)+1)
	assert.ErrorIs(t, err, packtype.ErrDecompression)
	_, err = Decode(packtype.CompressionZstd, frame, len(content)-1)
	assert.ErrorIs(t, err, packtype.ErrDecompression)
}
