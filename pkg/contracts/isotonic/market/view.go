package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// marketView adapts *Market to common.MarketView, the narrow surface the Credit Agency
// programs against. It supplies the Agency's own address as the caller on every
// privileged call — safe because a marketView is only ever handed to the Credit Agency
// that registered this Market in the first place (see creditagency.CreateMarket), so
// the identity baked in here is exactly the identity the Market's own authorization
// check (requireCreditAgency) expects. The check itself stays in Market's methods,
// matching spec.md §9's "do not scatter the check".
type marketView struct{ m *Market }

// AsMarketView exposes this Market to a Credit Agency via the common.MarketView
// interface, so the two packages never import each other.
func (m *Market) AsMarketView() common.MarketView { return marketView{m: m} }

func (v marketView) Address() common.AccountID          { return v.m.Address() }
func (v marketView) MarketToken() string                { return v.m.MarketToken() }
func (v marketView) CommonToken() string                { return v.m.CommonToken() }
func (v marketView) CollateralRatio() sdkmath.LegacyDec { return v.m.CollateralRatio() }

func (v marketView) CreditLine(account common.AccountID) (common.CreditLine, error) {
	return v.m.CreditLine(account)
}

// DepositTo is exposed to the Credit Agency so a liquidation can credit the
// liquidator's initiation fee as new L-tokens backed by the matching cash, the same
// way any ordinary deposit would (spec.md §9's resolved fee-disbursement Open Question).
func (v marketView) DepositTo(account common.AccountID, funds common.Coin) error {
	return v.m.DepositTo(v.m.config.CreditAgency, account, []common.Coin{funds})
}

func (v marketView) SwapWithdrawFrom(account common.AccountID, sellLimit sdkmath.Int, buy common.Coin) (common.Coin, error) {
	return v.m.SwapWithdrawFrom(v.m.config.CreditAgency, account, sellLimit, buy)
}

func (v marketView) RepayTo(account common.AccountID, amount sdkmath.Int, funds common.Coin) error {
	return v.m.RepayTo(v.m.config.CreditAgency, account, amount, funds)
}

func (v marketView) DistributeAsLTokens(funds common.Coin) error {
	return v.m.DistributeAsLTokens(v.m.config.CreditAgency, funds)
}

func (v marketView) AdjustCommonToken(newToken string) error {
	return v.m.AdjustCommonToken(v.m.config.CreditAgency, newToken)
}
