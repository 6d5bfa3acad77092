package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/gpak/internal/packtype"
)

// Header is the fixed-size archive prefix.
type Header struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
}

// NewHeader returns a current-version header for count entries.
func NewHeader(count uint32) Header {
	h := Header{Version: Version, Count: count}
	copy(h.Magic[:], Magic)
	return h
}

// Encode serializes the header.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Count)
	return buf
}

// Validate checks the magic, then the version.
func (h *Header) Validate() error {
	if string(h.Magic[:]) != Magic {
		return fmt.Errorf("%w: magic %q", packtype.ErrFormat, h.Magic[:])
	}
	if h.Version != Version {
		return &packtype.VersionError{Version: h.Version, Want: Version}
	}
	return nil
}

// DecodeHeader parses a header without validating it.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header data too small: %d bytes, expected %d", len(data), HeaderSize)
	}
	var h Header
	copy(h.Magic[:], data[0:4])
	h.Version = binary.LittleEndian.Uint32(data[4:8])
	h.Count = binary.LittleEndian.Uint32(data[8:12])
	return h, nil
}

// ReadHeader reads and validates a header from r.
// A short read returns an error wrapping io.ErrUnexpectedEOF.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("read header: %w", shortRead(err))
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return Header{}, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// shortRead maps a clean EOF to io.ErrUnexpectedEOF; a record that is
// declared but missing is always truncation.
func shortRead(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
