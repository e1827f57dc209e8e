package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

func (m *Market) requireCreditAgency(caller common.AccountID) error {
	if caller != m.config.CreditAgency {
		return common.ErrRequiresCreditAgency
	}
	return nil
}

// RepayTo burns amount of B-token from account, credit-agency-only (spec.md §4.3).
// funds is the debt-denominated coin the Agency attaches; amount may be less than
// funds — the extra is retained as market cash by design.
func (m *Market) RepayTo(caller, account common.AccountID, amount sdkmath.Int, funds common.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCreditAgency(caller); err != nil {
		return err
	}
	if err := m.accrue(); err != nil {
		return err
	}
	if funds.Denom != m.config.MarketToken {
		return &common.InvalidDenom{Expected: m.config.MarketToken, Actual: funds.Denom}
	}

	debt := m.btoken.Balance(account)
	if funds.Amount.GT(debt) {
		return &common.LiquidationInsufficientBTokens{Debt: debt, Amount: funds.Amount}
	}

	if err := m.btoken.BurnFrom(account, amount); err != nil {
		return err
	}
	m.cash = m.cash.Add(funds.Amount)

	m.recorder.Record("repay_to", map[string]string{"market_token": m.config.MarketToken, "account": string(account), "amount": amount.String()})
	return nil
}

// SwapWithdrawFrom burns L of account and yields buy to the caller, credit-agency-only
// (spec.md §4.3). When buy.Denom == market_token, it burns exactly buy.Amount with no
// swap, no slippage, and no fee.
func (m *Market) SwapWithdrawFrom(caller, account common.AccountID, sellLimit sdkmath.Int, buy common.Coin) (common.Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCreditAgency(caller); err != nil {
		return common.Coin{}, err
	}
	if err := m.accrue(); err != nil {
		return common.Coin{}, err
	}

	if buy.Denom == m.config.MarketToken {
		if err := m.ltoken.BurnFrom(account, buy.Amount); err != nil {
			return common.Coin{}, err
		}
		m.cash = m.cash.Sub(buy.Amount)
		return buy, nil
	}

	sellAmount, err := m.quoteSwapRoute(buy)
	if err != nil {
		return common.Coin{}, err
	}
	if sellAmount.GT(sellLimit) {
		return common.Coin{}, &common.IncorrectSwapAmountResponse{Expected: sellLimit, Actual: sellAmount}
	}

	if err := m.ltoken.BurnFrom(account, sellAmount); err != nil {
		return common.Coin{}, err
	}
	m.cash = m.cash.Sub(sellAmount)

	if err := m.executeSwapRoute(sellAmount, buy); err != nil {
		return common.Coin{}, err
	}

	m.recorder.Record("swap_withdraw_from", map[string]string{
		"market_token": m.config.MarketToken, "account": string(account),
		"sell_amount": sellAmount.String(), "buy_denom": buy.Denom, "buy_amount": buy.Amount.String(),
	})
	return buy, nil
}

// DistributeAsLTokens rebases L by (L_supply + funds) / L_supply, credit-agency-only —
// the mechanism by which liquidation fees reach all lenders pro rata (spec.md §4.3).
func (m *Market) DistributeAsLTokens(caller common.AccountID, funds common.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCreditAgency(caller); err != nil {
		return err
	}
	if err := m.accrue(); err != nil {
		return err
	}
	if funds.Denom != m.config.MarketToken {
		return &common.InvalidDenom{Expected: m.config.MarketToken, Actual: funds.Denom}
	}

	lSupply := m.ltoken.TotalSupply()
	if lSupply.IsZero() {
		return common.ErrNoHoldersToDistribute
	}

	ratio, err := common.QuoDec(common.DecFromInt(lSupply.Add(funds.Amount)), common.DecFromInt(lSupply))
	if err != nil {
		return err
	}
	if err := m.ltoken.Rebase(ratio); err != nil {
		return err
	}
	m.cash = m.cash.Add(funds.Amount)

	m.recorder.Record("distribute_as_ltokens", map[string]string{"market_token": m.config.MarketToken, "amount": funds.Amount.String()})
	return nil
}

// AdjustCommonToken updates config.common_token, credit-agency-only (spec.md §4.3).
func (m *Market) AdjustCommonToken(caller common.AccountID, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCreditAgency(caller); err != nil {
		return err
	}
	m.config.CommonToken = newToken
	return nil
}
