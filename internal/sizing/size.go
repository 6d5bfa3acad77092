// Package sizing provides safe size arithmetic for the archive's 32-bit fields.
package sizing

import "math"

// ToUint32 converts a length to uint32, returning overflowErr if it doesn't fit.
func ToUint32(n int, overflowErr error) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(n), nil
}

// ToInt converts a uint32 to int, returning overflowErr if it doesn't fit.
// Only 32-bit platforms can overflow.
func ToInt(size uint32, overflowErr error) (int, error) {
	if uint64(size) > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// AddUint32 adds two uint32 values, returning (result, false) on overflow.
func AddUint32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// Exceeds reports whether size is above a non-zero limit.
func Exceeds(size uint32, limit uint64) bool {
	return limit > 0 && uint64(size) > limit
}
