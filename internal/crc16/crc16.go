// Package crc16 implements the CRC-16/ARC checksum used to protect archive
// entries.
//
// The checksum uses polynomial 0x8005 with an initial remainder of zero,
// reflected input bytes, a reflected final remainder, and no final XOR.
// The lookup table is derived with the plain MSB-first division, so input
// bytes are reflected before the lookup and the remainder is reflected when
// the checksum is read.
package crc16

import (
	"hash"
	"math/bits"
	"sync"
)

const (
	// Size is the size of a CRC-16 checksum in bytes.
	Size = 2

	// Polynomial is the generator polynomial in MSB-first notation.
	Polynomial = 0x8005

	initialRemainder = 0x0000
	finalXOR         = 0x0000
	topBit           = 1 << 15
)

// table is computed on first use and shared read-only afterwards.
var table = sync.OnceValue(makeTable)

func makeTable() *[256]uint16 {
	var t [256]uint16
	for dividend := range 256 {
		remainder := uint16(dividend) << 8
		for range 8 {
			if remainder&topBit != 0 {
				remainder = (remainder << 1) ^ Polynomial
			} else {
				remainder <<= 1
			}
		}
		t[dividend] = remainder
	}
	return &t
}

// Digest accumulates a CRC-16 over appended bytes.
//
// The zero value is ready to use. Digest implements hash.Hash so it can be
// fed through io.Copy or io.MultiWriter.
type Digest struct {
	remainder uint16
}

var _ hash.Hash = (*Digest)(nil)

// New returns a Digest with the initial remainder.
func New() *Digest {
	return &Digest{remainder: initialRemainder}
}

// Append folds one byte into the running remainder.
func (d *Digest) Append(b byte) {
	t := table()
	data := bits.Reverse8(b) ^ byte(d.remainder>>8)
	d.remainder = t[data] ^ (d.remainder << 8)
}

// Write folds p into the running remainder. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	t := table()
	r := d.remainder
	for _, b := range p {
		r = t[bits.Reverse8(b)^byte(r>>8)] ^ (r << 8)
	}
	d.remainder = r
	return len(p), nil
}

// Sum16 returns the checksum of the bytes appended so far.
// It does not change the accumulated state.
func (d *Digest) Sum16() uint16 {
	return bits.Reverse16(d.remainder) ^ finalXOR
}

// Sum appends the big-endian checksum to b.
func (d *Digest) Sum(b []byte) []byte {
	s := d.Sum16()
	return append(b, byte(s>>8), byte(s))
}

// Reset restores the initial remainder.
func (d *Digest) Reset() { d.remainder = initialRemainder }

// Size returns the checksum size in bytes.
func (d *Digest) Size() int { return Size }

// BlockSize returns 1; the checksum is byte oriented.
func (d *Digest) BlockSize() int { return 1 }

// Checksum returns the CRC-16 of p.
func Checksum(p []byte) uint16 {
	var d Digest
	_, _ = d.Write(p) //nolint:errcheck // Write never fails
	return d.Sum16()
}
