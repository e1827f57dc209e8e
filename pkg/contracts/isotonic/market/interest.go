package market

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	ourmath "github.com/margined-protocol/isotonic-lend/pkg/math"
)

// SecondsInYear is part of the protocol ABI (spec.md §6) and must never change between
// versions.
const SecondsInYear = 31_556_736

// CurveKind discriminates the two interest-rate shapes a Market can be configured with.
type CurveKind int

const (
	// CurveLinear is rate = base + slope*utilisation.
	CurveLinear CurveKind = iota
	// CurvePiecewiseLinear is the two-segment kinked curve with an optimal utilisation.
	CurvePiecewiseLinear
)

// InterestRateModel is a direct continuation of the teacher's
// pkg/contracts/mars/redbank InterestRateModel/irm.go, generalized to also express the
// plain linear curve spec.md §3 allows alongside the piecewise one.
type InterestRateModel struct {
	Kind                 CurveKind
	Base                 sdkmath.LegacyDec
	Slope                sdkmath.LegacyDec // used when Kind == CurveLinear
	Slope1               sdkmath.LegacyDec // used when Kind == CurvePiecewiseLinear
	Slope2               sdkmath.LegacyDec
	OptimalUtilisation   sdkmath.LegacyDec
}

// Validate enforces spec.md §3's curve constraints: optimal in (0,1] when piecewise,
// all rates non-negative.
func (m InterestRateModel) Validate() error {
	if m.Base.IsNegative() {
		return fmt.Errorf("interest curve base must be non-negative, got %s", m.Base)
	}
	switch m.Kind {
	case CurveLinear:
		if m.Slope.IsNegative() {
			return fmt.Errorf("interest curve slope must be non-negative, got %s", m.Slope)
		}
	case CurvePiecewiseLinear:
		if m.Slope1.IsNegative() || m.Slope2.IsNegative() {
			return fmt.Errorf("interest curve slopes must be non-negative")
		}
		if !m.OptimalUtilisation.IsPositive() || m.OptimalUtilisation.GT(sdkmath.LegacyOneDec()) {
			return fmt.Errorf("optimal_utilisation must be in (0,1], got %s", m.OptimalUtilisation)
		}
	default:
		return fmt.Errorf("unknown interest curve kind %d", m.Kind)
	}
	return nil
}

// Rate evaluates f(utilisation) for the configured curve (spec.md §4.3 "Curve").
func (m InterestRateModel) Rate(utilisation sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if m.Kind == CurveLinear {
		return m.Base.Add(m.Slope.Mul(utilisation)), nil
	}
	return m.piecewiseRate(utilisation)
}

func (m InterestRateModel) piecewiseRate(utilisation sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	optimal := m.OptimalUtilisation
	one := sdkmath.LegacyOneDec()

	// Degenerate U* = 0 uses only the second branch starting from base+slope1.
	if optimal.IsZero() {
		denom := one
		excess := utilisation
		return m.Base.Add(m.Slope1).Add(m.Slope2.Mul(excess).Quo(denom)), nil
	}

	if utilisation.LT(optimal) || optimal.Equal(one) {
		ratio, err := common.QuoDec(utilisation, optimal)
		if err != nil {
			return sdkmath.LegacyDec{}, err
		}
		return m.Base.Add(m.Slope1.Mul(ratio)), nil
	}

	denom := one.Sub(optimal)
	excess := utilisation.Sub(optimal)
	ratio, err := common.QuoDec(excess, denom)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return m.Base.Add(m.Slope1).Add(m.Slope2.Mul(ratio)), nil
}

// accrualResult is the outcome of one Accrue call, used both to mutate the market and
// to answer the virtual-accrual queries (TokensBalance, CreditLine, Apy) without
// mutating state.
type accrualResult struct {
	epochs      int64
	bRatio      sdkmath.LegacyDec
	lRatio      sdkmath.LegacyDec
	charged     sdkmath.Int
	reserveCut  sdkmath.Int
	utilisation sdkmath.LegacyDec
	annualRate  sdkmath.LegacyDec
}

// computeAccrual implements spec.md §4.3's "Interest accrual — the hot path" steps
// 1-10 without mutating any state; Accrue applies the result via token rebases.
func computeAccrual(
	now, lastCharged, chargePeriod int64,
	curve InterestRateModel,
	reserveFactor sdkmath.LegacyDec,
	bSupply, lSupply, cash, reserve sdkmath.Int,
) (*accrualResult, error) {
	if chargePeriod <= 0 {
		return nil, fmt.Errorf("interest_charge_period must be positive")
	}
	epochs := (now - lastCharged) / chargePeriod
	if epochs <= 0 || lSupply.IsZero() {
		return nil, nil //nolint:nilnil // no-op accrual is a valid, common outcome
	}

	utilisation, err := common.QuoDec(common.DecFromInt(bSupply), common.DecFromInt(lSupply))
	if err != nil {
		return nil, err
	}

	annualRate, err := curve.Rate(utilisation)
	if err != nil {
		return nil, err
	}

	periodRate := annualRate.MulInt64(chargePeriod).QuoInt64(SecondsInYear)
	onePlusPeriodRate := sdkmath.LegacyOneDec().Add(periodRate)
	bRatio := ourmath.IntPow(onePlusPeriodRate, epochs).Sub(sdkmath.LegacyOneDec())

	charged := bRatio.MulInt(bSupply).TruncateInt()
	reserveCut := reserveFactor.MulInt(charged).TruncateInt()

	// l_ratio = (B_supply*b_ratio - reserve_cut) / L_supply: lenders receive the interest
	// charged to borrowers minus the reserve's cut, so L grows by exactly what B grows
	// by less what the reserve takes, preserving cash + B = L + reserve across the accrual.
	numerator := bRatio.MulInt(bSupply).Sub(common.DecFromInt(reserveCut))
	lRatio, err := common.QuoDec(numerator, common.DecFromInt(lSupply))
	if err != nil {
		return nil, err
	}

	return &accrualResult{
		epochs:      epochs,
		bRatio:      bRatio,
		lRatio:      lRatio,
		charged:     charged,
		reserveCut:  reserveCut,
		utilisation: utilisation,
		annualRate:  annualRate,
	}, nil
}
