// Package math holds small arithmetic helpers shared by the oracle sanity feed and the
// market interest engine. It is deliberately narrow: anything domain-specific to the
// lending protocol's display/stored conversions lives in
// pkg/contracts/isotonic/common instead.
package math

import (
	"math"

	sdkmath "cosmossdk.io/math"
)

// BpsToDecimal converts a basis-points threshold to a fractional float.
func BpsToDecimal(bps int64) float64 {
	return float64(bps) / 10000.0
}

// ComparePercentageChange calculates the percentage change and checks if it is
// significant against a basis-points threshold. Used by the oracle's secondary-feed
// sanity check.
func ComparePercentageChange(oldValue, newValue float64, threshold int64) (float64, bool) {
	var percentageChange float64

	floatThreshold := BpsToDecimal(threshold)

	if oldValue != 0 {
		percentageChange = (newValue - oldValue) / math.Abs(oldValue)
	} else {
		percentageChange = 1
	}

	isSignificant := math.Abs(percentageChange) >= floatThreshold
	return percentageChange, isSignificant
}

// Interpolate linearly interpolates between two points (x1,y1) and (x2,y2) to find the
// y-value corresponding to the provided x-value.
func Interpolate(x, x1, y1, x2, y2 sdkmath.LegacyDec) sdkmath.LegacyDec {
	if x2.Equal(x1) {
		return y1
	}
	return y1.Add(
		x.Sub(x1).Mul(
			y2.Sub(y1),
		).Quo(
			x2.Sub(x1),
		),
	)
}

// SaturatingSub subtracts without going below zero.
func SaturatingSub(minuend, subtrahend sdkmath.Int) sdkmath.Int {
	if minuend.LT(subtrahend) {
		return sdkmath.ZeroInt()
	}
	return minuend.Sub(subtrahend)
}

// IntPow raises base (a Dec, typically 1+period_rate) to a non-negative integer
// exponent via exponentiation by squaring. Used by the market's accrual step to
// compute b_ratio = (1+period_rate)^epochs - 1 (spec.md §4.3).
func IntPow(base sdkmath.LegacyDec, exponent int64) sdkmath.LegacyDec {
	if exponent < 0 {
		panic("math.IntPow: negative exponent is not supported")
	}
	result := sdkmath.LegacyOneDec()
	b := base
	e := exponent
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(b)
		}
		b = b.Mul(b)
		e >>= 1
	}
	return result
}
