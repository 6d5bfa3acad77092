package format

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gpak/internal/packtype"
)

func TestHeaderLayout(t *testing.T) {
	t.Parallel()

	h := NewHeader(3)
	data := h.Encode()
	require.Len(t, data, HeaderSize)
	assert.Equal(t, []byte("Gpak"), data[0:4])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[8:12]))

	got, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestReadHeaderBadMagic(t *testing.T) {
	t.Parallel()

	h := NewHeader(0)
	data := h.Encode()
	copy(data, "Zpak")

	_, err := ReadHeader(bytes.NewReader(data))
	require.ErrorIs(t, err, packtype.ErrFormat)
	assert.NotErrorIs(t, err, packtype.ErrVersion)
}

func TestReadHeaderBadVersion(t *testing.T) {
	t.Parallel()

	h := NewHeader(0)
	h.Version = 2
	_, err := ReadHeader(bytes.NewReader(h.Encode()))
	require.ErrorIs(t, err, packtype.ErrVersion)

	var verr *packtype.VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, uint32(2), verr.Version)
}

func TestReadHeaderMagicCheckedFirst(t *testing.T) {
	t.Parallel()

	h := Header{Magic: [4]byte{'n', 'o', 'p', 'e'}, Version: 9}
	_, err := ReadHeader(bytes.NewReader(h.Encode()))
	assert.ErrorIs(t, err, packtype.ErrFormat)
}

func TestReadHeaderShort(t *testing.T) {
	t.Parallel()

	_, err := ReadHeader(bytes.NewReader([]byte("Gpa")))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadHeader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRecordLayout(t *testing.T) {
	t.Parallel()

	e := packtype.Entry{
		Path:             "dir/file.bin",
		StoredSize:       0x11223344,
		UncompressedSize: 0x55667788,
		Offset:           0x01020304,
		Compression:      packtype.CompressionLZ4HC,
		Checksum:         0xBEEF,
	}
	data := AppendRecord(nil, &e)
	require.Len(t, data, EncodedRecordSize(e.Path))

	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, data[0:4])
	assert.Equal(t, []byte{0x88, 0x77, 0x66, 0x55}, data[4:8])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, data[8:12])
	assert.Equal(t, byte(1), data[12])
	assert.Equal(t, byte(0), data[13])
	assert.Equal(t, []byte{0xEF, 0xBE}, data[14:16])
	assert.Equal(t, uint32(len(e.Path)), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, e.Path, string(data[20:]))

	rec, err := ReadRecord(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, e, rec.Entry)
	assert.False(t, rec.Clamped())
}

func TestReadRecordClampsLongPath(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 500) + strings.Repeat("b", MaxPathLength)
	var fixed [RecordSize + PathLengthSize]byte
	binary.LittleEndian.PutUint32(fixed[16:20], uint32(len(long)))

	var buf bytes.Buffer
	buf.Write(fixed[:])
	buf.WriteString(long)
	buf.WriteString("NEXT")

	r := bytes.NewReader(buf.Bytes())
	rec, err := ReadRecord(r)
	require.NoError(t, err)
	assert.True(t, rec.Clamped())
	assert.Equal(t, uint32(len(long)), rec.DeclaredPathLength)
	assert.Equal(t, strings.Repeat("b", MaxPathLength), rec.Entry.Path)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "NEXT", string(rest), "reader must stay aligned after clamping")
}

func TestReadRecordShort(t *testing.T) {
	t.Parallel()

	e := packtype.Entry{Path: "abc"}
	data := AppendRecord(nil, &e)

	_, err := ReadRecord(bytes.NewReader(data[:10]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadRecord(bytes.NewReader(data[:len(data)-1]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTruncatePath(t *testing.T) {
	t.Parallel()

	p, ok := TruncatePath("short")
	assert.False(t, ok)
	assert.Equal(t, "short", p)

	exact := strings.Repeat("x", MaxPathLength)
	p, ok = TruncatePath(exact)
	assert.False(t, ok)
	assert.Equal(t, exact, p)

	long := strings.Repeat("p", 976) + "/" + strings.Repeat("s", 1023)
	p, ok = TruncatePath(long)
	assert.True(t, ok)
	assert.Len(t, p, MaxPathLength)
	assert.Equal(t, long[len(long)-MaxPathLength:], p)
}

func TestEncodeDirectory(t *testing.T) {
	t.Parallel()

	entries := []packtype.Entry{
		{Path: "a.txt", StoredSize: 10, UncompressedSize: 10, Offset: 0},
		{Path: "b.txt", StoredSize: 4, UncompressedSize: 1000, Offset: 10, Compression: packtype.CompressionLZ4HC},
	}
	data, err := EncodeDirectory(entries)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize+EncodedRecordSize("a.txt")+EncodedRecordSize("b.txt"))

	r := bytes.NewReader(data)
	h, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.Count)
	for _, want := range entries {
		rec, err := ReadRecord(r)
		require.NoError(t, err)
		assert.Equal(t, want, rec.Entry)
	}
	assert.Equal(t, 0, r.Len())
}

func TestEncodeDirectoryRejectsLongPath(t *testing.T) {
	t.Parallel()

	_, err := EncodeDirectory([]packtype.Entry{{Path: strings.Repeat("x", MaxPathLength+1)}})
	assert.Error(t, err)
}
