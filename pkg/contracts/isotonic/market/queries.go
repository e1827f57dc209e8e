package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	ourmath "github.com/margined-protocol/isotonic-lend/pkg/math"
)

// virtualAccrual computes what computeAccrual would produce right now without
// mutating the Market, backing every query spec.md §4.3 says must "run a virtual
// accrual": TokensBalance, CreditLine, Apy, Interest.
func (m *Market) virtualAccrual() (*accrualResult, error) {
	return computeAccrual(
		m.now(), m.lastCharged, m.config.ChargePeriod,
		m.config.Curve, m.config.ReserveFactor,
		m.btoken.TotalSupply(), m.ltoken.TotalSupply(), m.cash, m.reserve,
	)
}

// virtualBalances projects account's {l, b} display balances as of the next real
// accrual, without mutating any token state.
func (m *Market) virtualBalances(account common.AccountID) (common.TokenBalances, error) {
	result, err := m.virtualAccrual()
	if err != nil {
		return common.TokenBalances{}, err
	}
	if result == nil {
		return common.TokenBalances{L: m.ltoken.Balance(account), B: m.btoken.Balance(account)}, nil
	}

	lMultiplier := m.ltoken.Multiplier().Mul(sdkmath.LegacyOneDec().Add(result.lRatio))
	bMultiplier := m.btoken.Multiplier().Mul(sdkmath.LegacyOneDec().Add(result.bRatio))

	l := lMultiplier.MulInt(m.ltoken.StoredBalance(account)).TruncateInt()
	b := bMultiplier.MulInt(m.btoken.StoredBalance(account)).TruncateInt()
	return common.TokenBalances{L: l, B: b}, nil
}

// TokensBalance returns {l, b} including uncharged interest (spec.md §4.3).
func (m *Market) TokensBalance(account common.AccountID) (common.TokenBalances, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.virtualBalances(account)
}

// CreditLine returns {collateral, credit_line, debt} quoted in common_token, using the
// virtual-accrual balances (spec.md §4.3).
func (m *Market) CreditLine(account common.AccountID) (common.CreditLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balances, err := m.virtualBalances(account)
	if err != nil {
		return common.CreditLine{}, err
	}

	price, err := m.priceMarketToCommon()
	if err != nil {
		return common.CreditLine{}, err
	}

	collateral := common.DecFromInt(balances.L).Mul(price)
	debt := common.DecFromInt(balances.B).Mul(price)
	creditLine := collateral.Mul(m.config.CollateralRatio)

	return common.CreditLine{Collateral: collateral, CreditLine: creditLine, Debt: debt}, nil
}

// Apy returns {borrower, lender} (spec.md §4.3). periods_per_year = SECONDS_IN_YEAR /
// interest_charge_period.
func (m *Market) Apy() (common.Apy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bSupply := m.btoken.TotalSupply()
	lSupply := m.ltoken.TotalSupply()

	var utilisation sdkmath.LegacyDec
	if lSupply.IsZero() {
		utilisation = sdkmath.LegacyZeroDec()
	} else {
		var err error
		utilisation, err = common.QuoDec(common.DecFromInt(bSupply), common.DecFromInt(lSupply))
		if err != nil {
			return common.Apy{}, err
		}
	}

	rate, err := m.config.Curve.Rate(utilisation)
	if err != nil {
		return common.Apy{}, err
	}

	periodsPerYear := sdkmath.LegacyNewDec(SecondsInYear).QuoInt64(m.config.ChargePeriod)
	ratePerPeriod, err := common.QuoDec(rate, periodsPerYear)
	if err != nil {
		return common.Apy{}, err
	}

	borrower := powDec(sdkmath.LegacyOneDec().Add(ratePerPeriod), periodsPerYear).Sub(sdkmath.LegacyOneDec())
	lender := borrower.Mul(utilisation).Mul(sdkmath.LegacyOneDec().Sub(m.config.ReserveFactor))

	return common.Apy{Borrower: borrower, Lender: lender}, nil
}

// Interest returns {interest, utilisation, charge_period} (spec.md §6).
func (m *Market) Interest() (common.InterestResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bSupply := m.btoken.TotalSupply()
	lSupply := m.ltoken.TotalSupply()

	var utilisation sdkmath.LegacyDec
	if lSupply.IsZero() {
		utilisation = sdkmath.LegacyZeroDec()
	} else {
		var err error
		utilisation, err = common.QuoDec(common.DecFromInt(bSupply), common.DecFromInt(lSupply))
		if err != nil {
			return common.InterestResponse{}, err
		}
	}

	rate, err := m.config.Curve.Rate(utilisation)
	if err != nil {
		return common.InterestResponse{}, err
	}

	return common.InterestResponse{Interest: rate, Utilisation: utilisation, ChargePeriod: m.config.ChargePeriod}, nil
}

// PriceMarketLocalPerCommon returns the oracle rate market_token -> common_token.
func (m *Market) PriceMarketLocalPerCommon() (sdkmath.LegacyDec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.priceMarketToCommon()
}

// Reserve returns the current reserve balance in market-token units.
func (m *Market) Reserve() sdkmath.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reserve
}

// Cash returns the market's current balance of its own asset.
func (m *Market) Cash() sdkmath.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cash
}

// Configuration returns a copy of the Market's Config.
func (m *Market) Configuration() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// powDec raises base to a (possibly fractional) Dec exponent via repeated squaring on
// its truncated integer part; periods_per_year is usually fractional (SECONDS_IN_YEAR =
// 2^7*3^3*23*397, so e.g. an hourly charge period gives 8765.76), and the fractional
// remainder is handled by the first-order approximation below.
func powDec(base, exponent sdkmath.LegacyDec) sdkmath.LegacyDec {
	whole := exponent.TruncateInt64()
	result := ourmath.IntPow(base, whole)
	frac := exponent.Sub(sdkmath.LegacyNewDec(whole))
	if frac.IsZero() {
		return result
	}
	// Fractional compounding: approximate base^frac as 1 + frac*(base-1), a first-order
	// expansion good enough for the sub-period remainder this path exists to cover.
	approxFracTerm := sdkmath.LegacyOneDec().Add(frac.Mul(base.Sub(sdkmath.LegacyOneDec())))
	return result.Mul(approxFracTerm)
}
