package core

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestCheckedAdd(t *testing.T) {
	sum, ok := CheckedAdd(1, 2)
	check.True(t, ok)
	check.Equal(t, uint64(3), sum)

	_, ok = CheckedAdd(math.MaxUint64, 1)
	check.False(t, ok)

	sum, ok = CheckedAdd(math.MaxUint64, 0)
	check.True(t, ok)
	check.Equal(t, uint64(math.MaxUint64), sum)
}

func TestSaturatingAdd(t *testing.T) {
	check.Equal(t, uint64(3), SaturatingAdd(1, 2))
	check.Equal(t, uint64(math.MaxUint64), SaturatingAdd(math.MaxUint64, 1))
}

func TestSaturatingSub(t *testing.T) {
	check.Equal(t, uint64(1), SaturatingSub(3, 2))
	check.Equal(t, uint64(0), SaturatingSub(2, 3))
	check.Equal(t, uint64(0), SaturatingSub(0, math.MaxUint64))
}

func TestSaturatingMul(t *testing.T) {
	check.Equal(t, uint64(6), SaturatingMul(2, 3))
	check.Equal(t, uint64(0), SaturatingMul(0, math.MaxUint64))
	check.Equal(t, uint64(math.MaxUint64), SaturatingMul(math.MaxUint64, 2))
}

func TestSaturatingAddTime(t *testing.T) {
	check.Equal(t, int64(300), SaturatingAddTime(100, 200))
	check.Equal(t, int64(math.MaxInt64), SaturatingAddTime(math.MaxInt64, 1))
}
