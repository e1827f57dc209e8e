package math

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkmath "cosmossdk.io/math"
)

// TestInterpolate tests the interpolation function used in interest rate calculations.
func TestInterpolate(t *testing.T) {
	testCases := []struct {
		name     string
		x        string
		x1       string
		y1       string
		x2       string
		y2       string
		expected string
	}{
		{
			name:     "Left endpoint",
			x:        "3.0",
			x1:       "3.0",
			y1:       "11.1",
			x2:       "6.0",
			y2:       "17.4",
			expected: "11.1",
		},
		{
			name:     "Middle point",
			x:        "0.5",
			x1:       "0.0",
			y1:       "0.0",
			x2:       "1.0",
			y2:       "1.0",
			expected: "0.5",
		},
		{
			name:     "Equal x values should return y1",
			x:        "0.5",
			x1:       "0.5",
			y1:       "0.3",
			x2:       "0.5",
			y2:       "0.7",
			expected: "0.3",
		},
		{
			name:     "Interest rate kink interpolation",
			x:        "0.5",
			x1:       "0.0",
			y1:       "0.02",
			x2:       "0.8",
			y2:       "0.22",
			expected: "0.145",
		},
		{
			name:     "Interest rate above kink",
			x:        "0.85",
			x1:       "0.8",
			y1:       "0.22",
			x2:       "0.9",
			y2:       "1.52",
			expected: "0.87",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x, _ := sdkmath.LegacyNewDecFromStr(tc.x)
			x1, _ := sdkmath.LegacyNewDecFromStr(tc.x1)
			y1, _ := sdkmath.LegacyNewDecFromStr(tc.y1)
			x2, _ := sdkmath.LegacyNewDecFromStr(tc.x2)
			y2, _ := sdkmath.LegacyNewDecFromStr(tc.y2)
			expected, _ := sdkmath.LegacyNewDecFromStr(tc.expected)

			result := Interpolate(x, x1, y1, x2, y2)

			delta := sdkmath.LegacyNewDecWithPrec(1, 6)
			assert.InDelta(t,
				expected.MustFloat64(),
				result.MustFloat64(),
				delta.MustFloat64(),
				"Interpolation from (%s,%s) to (%s,%s) at x=%s should be %s, got %s",
				tc.x1, tc.y1, tc.x2, tc.y2, tc.x, tc.expected, result.String())
		})
	}
}

func TestComparePercentageChange(t *testing.T) {
	tests := []struct {
		oldValue            float64
		newValue            float64
		threshold           int64
		expectedChange      float64
		expectedSignificant bool
	}{
		{35000.00, 36000.00, 250, 0.02857142857142857, true},
		{35000.00, 35500.00, 250, 0.014285714285714286, false},
		{0.00, 1000.00, 100, 1, true},
		{1000.00, 1000.00, 50, 0, false},
		{1000.00, 1050.00, 500, 0.05, true},
		{1000.00, 950.00, 450, -0.05, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("oldValue: %v, newValue: %v", tt.oldValue, tt.newValue), func(t *testing.T) {
			change, significant := ComparePercentageChange(tt.oldValue, tt.newValue, tt.threshold)
			assert.Equal(t, tt.expectedChange, change)
			assert.Equal(t, tt.expectedSignificant, significant)
		})
	}
}

func TestSaturatingSub(t *testing.T) {
	assert.True(t, SaturatingSub(sdkmath.NewInt(5), sdkmath.NewInt(3)).Equal(sdkmath.NewInt(2)))
	assert.True(t, SaturatingSub(sdkmath.NewInt(3), sdkmath.NewInt(5)).IsZero())
}

func TestIntPow(t *testing.T) {
	base := sdkmath.LegacyMustNewDecFromStr("1.1")

	require.True(t, IntPow(base, 0).Equal(sdkmath.LegacyOneDec()))

	got := IntPow(base, 2)
	want := base.Mul(base)
	assert.True(t, got.Equal(want))

	got = IntPow(base, 5)
	want = sdkmath.LegacyOneDec()
	for i := 0; i < 5; i++ {
		want = want.Mul(base)
	}
	assert.True(t, got.Equal(want))
}
