package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// availableCommon is cross-market credit_line_total - debt_total, quoted in
// common_token, saturating on underflow (spec.md §4.3 "Accounting helpers").
func (m *Market) availableCommon(account common.AccountID) (sdkmath.LegacyDec, error) {
	totals, err := m.agency.TotalCreditLine(account)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return common.SaturatingSubDec(totals.CreditLine, totals.Debt), nil
}

// availableLocal converts availableCommon into market_token units via the oracle.
func (m *Market) availableLocal(account common.AccountID) (sdkmath.Int, error) {
	availableCommon, err := m.availableCommon(account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	price, err := m.priceMarketToCommon()
	if err != nil {
		return sdkmath.Int{}, err
	}
	local, err := common.QuoDec(availableCommon, price)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return local.TruncateInt(), nil
}

// transferableL is spec.md §4.3's transferable(acct): available_local / collateral_ratio,
// falling back to the account's own L-balance when it carries no debt anywhere
// ("a debt-free account may withdraw everything it deposited").
func (m *Market) transferableL(account common.AccountID) (sdkmath.Int, error) {
	if m.config.CollateralRatio.IsZero() {
		return sdkmath.Int{}, common.ErrZeroCollateralRatio
	}
	available, err := m.availableLocal(account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	transferableDec, err := common.QuoDec(common.DecFromInt(available), m.config.CollateralRatio)
	if err != nil {
		return sdkmath.Int{}, err
	}
	transferable := transferableDec.TruncateInt()

	totals, err := m.agency.TotalCreditLine(account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if totals.Debt.IsZero() {
		ownBalance := m.ltoken.Balance(account)
		transferable = common.MaxInt(transferable, ownBalance)
	}
	return transferable, nil
}

// withdrawable is min(transferable, ltoken_balance, cash) (spec.md §4.3).
func (m *Market) withdrawable(account common.AccountID) (sdkmath.Int, error) {
	transferable, err := m.transferableL(account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	ltokenBalance := m.ltoken.Balance(account)
	return common.MinInt(common.MinInt(transferable, ltokenBalance), m.cash), nil
}

// priceMarketToCommon returns the oracle rate market_token -> common_token, taking 1
// when they're the same denom (spec.md §4.3 "Key queries").
func (m *Market) priceMarketToCommon() (sdkmath.LegacyDec, error) {
	if m.config.MarketToken == m.config.CommonToken {
		return sdkmath.LegacyOneDec(), nil
	}
	return m.oracle.Price(m.config.MarketToken, m.config.CommonToken)
}

// Withdrawable is the public query wrapping withdrawable(account) (spec.md §6).
func (m *Market) Withdrawable(account common.AccountID) (sdkmath.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.withdrawable(account)
}

// Borrowable is min(available_local(account), cash) (spec.md §4.3).
func (m *Market) Borrowable(account common.AccountID) (sdkmath.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	available, err := m.availableLocal(account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return common.MinInt(available, m.cash), nil
}
