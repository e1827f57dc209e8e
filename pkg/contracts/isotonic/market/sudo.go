package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// Sudo is the governance-only surface Market exposes (spec.md §4.3 "Sudo"); unlike the
// credit-agency-gated ops above, callers reach this through the host's privileged sudo
// dispatch, which this library models as a plain method group with no caller check of
// its own (the check already happened at the dispatch boundary — see SPEC_FULL.md §1).
type Sudo struct{ m *Market }

// Sudo returns the governance-only operation group for this Market.
func (m *Market) Sudo() Sudo { return Sudo{m: m} }

// AdjustCollateralRatio updates config.collateral_ratio.
func (s Sudo) AdjustCollateralRatio(ratio sdkmath.LegacyDec) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cfg := s.m.config
	cfg.CollateralRatio = ratio
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.m.config = cfg
	return nil
}

// AdjustReserveFactor updates config.reserve_factor.
func (s Sudo) AdjustReserveFactor(factor sdkmath.LegacyDec) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cfg := s.m.config
	cfg.ReserveFactor = factor
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.m.config = cfg
	return nil
}

// AdjustPriceOracle updates config.price_oracle.
func (s Sudo) AdjustPriceOracle(oracle PriceOracle) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.oracle = oracle
}

// AdjustMarketCap updates config.market_cap (nil means uncapped).
func (s Sudo) AdjustMarketCap(cap *sdkmath.Int) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.config.MarketCap = cap
}

// AdjustInterestRate accrues with the old curve first, then installs the new one
// (spec.md §4.3: "Curve adjustment must Accrue first with the old curve").
func (s Sudo) AdjustInterestRate(curve InterestRateModel) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if err := curve.Validate(); err != nil {
		return err
	}
	if err := s.m.accrue(); err != nil {
		return err
	}
	s.m.config.Curve = curve
	return nil
}

// Accrue forces interest accrual up to the current epoch boundary without waiting for
// a user operation to trigger it (SPEC_FULL.md §4, supplementing spec.md: the distilled
// spec accrues lazily inside every op; a background sweeper needs to force this so
// queries stay fresh between user activity). A no-op if the charge period hasn't
// elapsed since the last accrual.
func (s Sudo) Accrue() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.accrue()
}

// WithdrawReserve removes `amount` from the market's reserve and cash, governance-only.
// It takes no recipient: the withdrawn amount is not credited to any account here
// (SPEC_FULL.md §4, supplementing spec.md: the distilled spec names reserve as a field
// and a query but never an operation to drain it; grounded on
// isotonic-market/src/multitest/reserve.rs).
func (s Sudo) WithdrawReserve(amount sdkmath.Int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if err := s.m.accrue(); err != nil {
		return err
	}
	if amount.GT(s.m.reserve) {
		return &common.InsufficientReserve{Available: s.m.reserve, Requested: amount}
	}
	s.m.reserve = s.m.reserve.Sub(amount)
	s.m.cash = s.m.cash.Sub(amount)
	return nil
}
