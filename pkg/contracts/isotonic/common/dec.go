package common

import (
	sdkmath "cosmossdk.io/math"
)

// DecFromInt promotes an Int to a Dec, used at every display/common-token conversion
// boundary so truncation only ever happens where the spec calls for it.
func DecFromInt(i sdkmath.Int) sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecFromInt(i)
}

// TruncateInt rounds a Dec toward zero, the rounding rule spec.md §9 mandates for every
// division in this protocol ("round-down on all divisions").
func TruncateInt(d sdkmath.LegacyDec) sdkmath.Int {
	return d.TruncateInt()
}

// QuoInt divides two Ints through Dec and truncates, i.e. integer division rounded
// toward zero; returns ErrDivisionByZero on a zero divisor instead of panicking.
func QuoInt(numerator, denominator sdkmath.Int) (sdkmath.Int, error) {
	if denominator.IsZero() {
		return sdkmath.Int{}, ErrDivisionByZero
	}
	return numerator.Quo(denominator), nil
}

// QuoDec divides two Decs, returning ErrDivisionByZero instead of panicking on a zero
// divisor — every cross-market ratio (utilisation, l_ratio, price conversions) goes
// through this rather than raw Dec.Quo.
func QuoDec(numerator, denominator sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if denominator.IsZero() {
		return sdkmath.LegacyDec{}, ErrDivisionByZero
	}
	return numerator.Quo(denominator), nil
}

// QuoDecOrZero divides two Decs, returning zero instead of erroring on a zero divisor —
// used where a zero price means "no debt/collateral to convert" rather than a fault.
func QuoDecOrZero(numerator, denominator sdkmath.LegacyDec) sdkmath.LegacyDec {
	if denominator.IsZero() {
		return sdkmath.LegacyZeroDec()
	}
	return numerator.Quo(denominator)
}

// MinInt returns the smaller of two sdkmath.Int values.
func MinInt(a, b sdkmath.Int) sdkmath.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// MaxInt returns the larger of two sdkmath.Int values.
func MaxInt(a, b sdkmath.Int) sdkmath.Int {
	if a.GT(b) {
		return a
	}
	return b
}

// SaturatingSubInt subtracts without going below zero, mirroring pkg/math.SaturatingSub
// (kept there for ambient/general use; re-grounded here so this package has no
// dependency on the ambient math package beyond what it needs).
func SaturatingSubInt(minuend, subtrahend sdkmath.Int) sdkmath.Int {
	if minuend.LT(subtrahend) {
		return sdkmath.ZeroInt()
	}
	return minuend.Sub(subtrahend)
}

// SaturatingSubDec is the Dec analogue of SaturatingSubInt, used by the liquidation
// seize-limit computation ("simulated_debt = total_debt_common - repay_common, saturating").
func SaturatingSubDec(minuend, subtrahend sdkmath.LegacyDec) sdkmath.LegacyDec {
	if minuend.LT(subtrahend) {
		return sdkmath.LegacyZeroDec()
	}
	return minuend.Sub(subtrahend)
}
