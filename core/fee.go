package core

import "github.com/shopspring/decimal"

// Platform fee rate in basis points (0.5% = 50).
const FeeRateBps = 50

// FeeDenominator converts basis points to a fraction.
const FeeDenominator = 10000

var (
	feeRate  = decimal.NewFromInt(FeeRateBps)
	feeDenom = decimal.NewFromInt(FeeDenominator)
)

// Fee returns the platform fee for an amount: floor(amount * 50 / 10000),
// truncated toward zero. Uses decimal arithmetic so the multiply is exact
// for the full uint64 range and never wraps.
func Fee(amount uint64) uint64 {
	fee := decimal.NewFromUint64(amount).Mul(feeRate).Div(feeDenom).Floor()
	return fee.BigInt().Uint64()
}

// Net returns the amount remaining after the platform fee is deducted.
func Net(amount uint64) uint64 {
	return SaturatingSub(amount, Fee(amount))
}

// SplitFee returns (fee, net) for an amount. fee + net == amount always.
func SplitFee(amount uint64) (fee, net uint64) {
	fee = Fee(amount)
	return fee, amount - fee
}
