package core

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestFee_KnownValues(t *testing.T) {
	// 0.5% of 1000 = 5
	check.Equal(t, uint64(5), Fee(1000))
	check.Equal(t, uint64(995), Net(1000))

	// 0.5% of 10000 = 50
	check.Equal(t, uint64(50), Fee(10000))
	check.Equal(t, uint64(9950), Net(10000))
}

func TestFee_TruncatesTowardZero(t *testing.T) {
	// 0.5% of 160 = 0.8, truncated to 0
	check.Equal(t, uint64(0), Fee(160))
	check.Equal(t, uint64(160), Net(160))

	// 0.5% of 199 = 0.995, truncated to 0
	check.Equal(t, uint64(0), Fee(199))
	check.Equal(t, uint64(199), Net(199))

	// 200 is the smallest amount with a nonzero fee
	check.Equal(t, uint64(1), Fee(200))
	check.Equal(t, uint64(199), Net(200))

	// 0.5% of 201 = 1.005, truncated to 1
	check.Equal(t, uint64(1), Fee(201))
	check.Equal(t, uint64(200), Net(201))
}

func TestFee_ZeroAmount(t *testing.T) {
	check.Equal(t, uint64(0), Fee(0))
	check.Equal(t, uint64(0), Net(0))
}

func TestFee_MaxAmountDoesNotWrap(t *testing.T) {
	// floor((2^64-1) * 50 / 10000) = floor((2^64-1) / 200)
	check.Equal(t, uint64(math.MaxUint64)/200, Fee(math.MaxUint64))
}

func TestSplitFee_Conservation(t *testing.T) {
	amounts := []uint64{0, 1, 199, 200, 201, 999, 1000, 10000, 123456789, 1 << 40, math.MaxUint64}

	for _, amount := range amounts {
		fee, net := SplitFee(amount)
		check.Equal(t, amount, fee+net)
		check.Equal(t, Fee(amount), fee)
		check.Equal(t, Net(amount), net)
	}
}
