package payroll

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccruedDelta(t *testing.T) {
	got, err := AccruedDelta(1000, 100, 160)
	require.NoError(t, err)
	assert.Equal(t, uint64(60_000), got)

	// Same instant is a no-op, not an error.
	got, err = AccruedDelta(1000, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	_, err = AccruedDelta(1000, 200, 100)
	assert.ErrorIs(t, err, ErrInvalidTimeOrdering)

	_, err = AccruedDelta(math.MaxUint64, 0, 2)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestAccruedDeltaAdditivity(t *testing.T) {
	// Accruing (t0,t1) then (t1,t2) equals accruing (t0,t2) once.
	const rate = 1234
	t0, t1, t2 := int64(1000), int64(1057), int64(1200)

	first, err := AccruedDelta(rate, t0, t1)
	require.NoError(t, err)
	second, err := AccruedDelta(rate, t1, t2)
	require.NoError(t, err)
	whole, err := AccruedDelta(rate, t0, t2)
	require.NoError(t, err)
	assert.Equal(t, whole, first+second)
}

func TestCheckedArithmetic(t *testing.T) {
	sum, err := checkedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = checkedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	diff, err := checkedSub(10, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), diff)

	_, err = checkedSub(9, 10)
	assert.ErrorIs(t, err, ErrArithmeticUnderflow)
}

func TestAllocateIndex(t *testing.T) {
	counter := uint64(0)
	for want := uint64(0); want < 4; want++ {
		got, err := AllocateIndex(&counter)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, uint64(4), counter)

	counter = math.MaxUint64
	_, err := AllocateIndex(&counter)
	assert.ErrorIs(t, err, ErrIndexOverflow)
	assert.Equal(t, uint64(math.MaxUint64), counter)
}
