package core

// DutchCurve describes a descending price schedule. The price starts at
// StartPrice, drops by DecreaseAmount every Interval seconds after
// StartTime, and never goes below MinimumPrice.
type DutchCurve struct {
	StartPrice     uint64
	DecreaseAmount uint64
	Interval       int64 // seconds between decreases, > 0
	MinimumPrice   uint64
	StartTime      int64 // unix timestamp when the price starts decreasing
}

// PriceAt returns the current price at the given unix timestamp.
// Monotone non-increasing in now; floors at MinimumPrice permanently
// once reached. All arithmetic saturates, never wraps.
func (c DutchCurve) PriceAt(now int64) uint64 {
	if now <= c.StartTime || c.Interval <= 0 {
		return c.StartPrice
	}

	elapsed := now - c.StartTime
	intervals := elapsed / c.Interval
	totalDecrease := SaturatingMul(uint64(intervals), c.DecreaseAmount)

	price := SaturatingSub(c.StartPrice, totalDecrease)
	if price < c.MinimumPrice {
		return c.MinimumPrice
	}
	return price
}
