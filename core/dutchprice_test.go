package core

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestDutchCurve_PriceSchedule(t *testing.T) {
	curve := DutchCurve{
		StartPrice:     1000,
		DecreaseAmount: 10,
		Interval:       60,
		MinimumPrice:   100,
		StartTime:      0,
	}

	// At start time, price is the start price
	check.Equal(t, uint64(1000), curve.PriceAt(0))

	// After one interval the price drops by one decrease
	check.Equal(t, uint64(990), curve.PriceAt(60))

	// Partial intervals do not count
	check.Equal(t, uint64(990), curve.PriceAt(119))

	// After five intervals the price drops by five decreases
	check.Equal(t, uint64(950), curve.PriceAt(300))

	// The price floors at the minimum and stays there
	check.Equal(t, uint64(100), curve.PriceAt(100000))
	check.Equal(t, uint64(100), curve.PriceAt(math.MaxInt64))
}

func TestDutchCurve_BeforeStart(t *testing.T) {
	curve := DutchCurve{
		StartPrice:     500,
		DecreaseAmount: 5,
		Interval:       10,
		MinimumPrice:   50,
		StartTime:      1000,
	}

	check.Equal(t, uint64(500), curve.PriceAt(0))
	check.Equal(t, uint64(500), curve.PriceAt(999))
	check.Equal(t, uint64(500), curve.PriceAt(1000))
	check.Equal(t, uint64(495), curve.PriceAt(1010))
}

func TestDutchCurve_MonotoneNonIncreasing(t *testing.T) {
	curve := DutchCurve{
		StartPrice:     100000,
		DecreaseAmount: 7,
		Interval:       13,
		MinimumPrice:   41,
		StartTime:      500,
	}

	prev := curve.PriceAt(0)
	for now := int64(1); now < 200000; now += 37 {
		price := curve.PriceAt(now)
		check.True(t, price <= prev)
		check.True(t, price >= curve.MinimumPrice)
		prev = price
	}
}

func TestDutchCurve_SaturatingDecrease(t *testing.T) {
	// A huge decrease amount must saturate instead of wrapping
	curve := DutchCurve{
		StartPrice:     1000,
		DecreaseAmount: math.MaxUint64,
		Interval:       1,
		MinimumPrice:   0,
		StartTime:      0,
	}

	check.Equal(t, uint64(0), curve.PriceAt(10))
}
