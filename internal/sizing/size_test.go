package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToUint32(t *testing.T) {
	t.Parallel()

	v, err := ToUint32(1024, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), v)

	_, err = ToUint32(-1, errOverflow)
	assert.ErrorIs(t, err, errOverflow)

	if uint64(math.MaxInt) > math.MaxUint32 {
		big := uint64(math.MaxUint32) + 1
		_, err = ToUint32(int(big), errOverflow) //nolint:gosec // 64-bit only
		assert.ErrorIs(t, err, errOverflow)
	}
}

func TestAddUint32(t *testing.T) {
	t.Parallel()

	sum, ok := AddUint32(10, 20)
	assert.True(t, ok)
	assert.Equal(t, uint32(30), sum)

	_, ok = AddUint32(math.MaxUint32, 1)
	assert.False(t, ok)
}

func TestExceeds(t *testing.T) {
	t.Parallel()

	assert.False(t, Exceeds(100, 0))
	assert.False(t, Exceeds(100, 100))
	assert.True(t, Exceeds(101, 100))
}
