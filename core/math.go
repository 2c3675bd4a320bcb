package core

import "math/bits"

// CheckedAdd returns a+b and reports whether the sum fits in a uint64.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// SaturatingAdd returns a+b, clamped to the maximum uint64 on overflow.
func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

// SaturatingSub returns a-b, clamped to zero on underflow.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SaturatingMul returns a*b, clamped to the maximum uint64 on overflow.
func SaturatingMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

// SaturatingAddTime returns a+b for unix timestamps, clamped to the
// maximum int64 on overflow. Both operands are expected non-negative.
func SaturatingAddTime(a, b int64) int64 {
	sum := a + b
	if sum < a {
		return int64(^uint64(0) >> 1)
	}
	return sum
}
