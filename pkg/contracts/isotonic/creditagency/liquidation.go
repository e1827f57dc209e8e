package creditagency

import (
	"go.uber.org/zap"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

func (a *CreditAgency) readyEntryForToken(denom string) (*marketEntry, error) {
	entry, ok := a.byToken[denom]
	if !ok {
		return nil, &common.NoMarket{Denom: denom}
	}
	if entry.state != stateReady {
		return nil, &common.MarketCreating{Denom: denom}
	}
	return entry, nil
}

// Liquidate implements spec.md §4.4's "hard case": it computes a seize limit that
// protects the account from over-seizure, then burns collateral and repays debt in two
// calls that either both succeed or neither mutates anything.
//
// The swap and the repay are kept effectively atomic without a cross-component
// transaction by validating everything that could make the repay fail (account's debt
// covers the principal) before the swap runs — the swap itself is the only step here
// that mutates state and it is all-or-nothing inside Market.SwapWithdrawFrom.
func (a *CreditAgency) Liquidate(caller, account common.AccountID, collateralDenom string, amountToRepay common.Coin) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	collateralEntry, err := a.readyEntryForToken(collateralDenom)
	if err != nil {
		return err
	}
	debtEntry, err := a.readyEntryForToken(amountToRepay.Denom)
	if err != nil {
		return err
	}

	// enteredMu is held only long enough to check membership and sum the credit line;
	// it is released before any Market view call below. Those calls (DepositTo in
	// particular) call back into EnterMarket, which takes enteredMu itself — holding it
	// across the call would deadlock this goroutine against itself.
	a.enteredMu.RLock()
	onCollateralMarket := a.entered[account][collateralEntry.addr]
	onDebtMarket := a.entered[account][debtEntry.addr]
	totalCL, err := a.totalCreditLineExcluding(account, "")
	a.enteredMu.RUnlock()
	if !onCollateralMarket {
		return &common.NotOnMarket{Address: account, Market: collateralDenom}
	}
	if !onDebtMarket {
		return &common.NotOnMarket{Address: account, Market: amountToRepay.Denom}
	}
	if err != nil {
		return err
	}
	if !totalCL.Debt.GT(totalCL.CreditLine) {
		return common.ErrLiquidationNotAllowed
	}

	pC, err := a.oracle.Price(collateralDenom, a.config.CommonToken)
	if err != nil {
		return err
	}
	pD, err := a.oracle.Price(amountToRepay.Denom, a.config.CommonToken)
	if err != nil {
		return err
	}

	debtCommonOwed, err := debtEntry.view.CreditLine(account)
	if err != nil {
		return err
	}
	debtInDebtToken := common.QuoDecOrZero(debtCommonOwed.Debt, pD).TruncateInt()
	if amountToRepay.Amount.GT(debtInDebtToken) {
		return &common.LiquidationInsufficientBTokens{Debt: debtInDebtToken, Amount: amountToRepay.Amount}
	}

	repayCommon := common.DecFromInt(amountToRepay.Amount).Mul(pD)
	simulatedDebt := common.SaturatingSubDec(totalCL.Debt, repayCommon)
	sellLimitCommon, err := common.QuoDec(common.SaturatingSubDec(totalCL.CreditLine, simulatedDebt), collateralEntry.view.CollateralRatio())
	if err != nil {
		return err
	}
	if !sellLimitCommon.IsPositive() {
		return &common.LiquidationUndercollateralized{Account: account}
	}
	sellLimitDec, err := common.QuoDec(sellLimitCommon, pC)
	if err != nil {
		return err
	}
	sellLimit := sellLimitDec.TruncateInt()
	if !sellLimit.IsPositive() {
		return &common.LiquidationUndercollateralized{Account: account}
	}

	lenderFee := common.DecFromInt(amountToRepay.Amount).Mul(a.config.LiquidationFee).TruncateInt()
	liquidatorFee := common.DecFromInt(amountToRepay.Amount).Mul(a.config.LiquidationInitiationFee).TruncateInt()
	buyAmount := amountToRepay.Amount.Add(lenderFee).Add(liquidatorFee)
	buy := common.NewCoin(amountToRepay.Denom, buyAmount)

	got, err := collateralEntry.view.SwapWithdrawFrom(account, sellLimit, buy)
	if err != nil {
		return err
	}

	if err := debtEntry.view.RepayTo(account, amountToRepay.Amount, common.NewCoin(amountToRepay.Denom, amountToRepay.Amount)); err != nil {
		return err
	}
	if lenderFee.IsPositive() {
		if err := debtEntry.view.DistributeAsLTokens(common.NewCoin(amountToRepay.Denom, lenderFee)); err != nil {
			return err
		}
	}
	if liquidatorFee.IsPositive() {
		if err := debtEntry.view.DepositTo(caller, common.NewCoin(amountToRepay.Denom, liquidatorFee)); err != nil {
			return err
		}
	}

	a.logger.Info("liquidation settled",
		zap.String("account", string(account)), zap.String("liquidator", string(caller)),
		zap.String("collateral_denom", collateralDenom), zap.String("debt_denom", amountToRepay.Denom),
		zap.String("repaid", amountToRepay.Amount.String()), zap.String("seized", got.Amount.String()))
	a.recorder.Record("liquidate", map[string]string{
		"account": string(account), "liquidator": string(caller),
		"collateral_denom": collateralDenom, "debt_denom": amountToRepay.Denom,
		"repaid": amountToRepay.Amount.String(), "seized": got.Amount.String(),
	})
	return nil
}

// RepayWithCollateral implements spec.md §4.4: unlike Liquidate, the account need not
// already be insolvent — the operation only proceeds if it would leave the account
// solvent afterward.
func (a *CreditAgency) RepayWithCollateral(sender common.AccountID, maxCollateral, amountToRepay common.Coin) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	collateralEntry, err := a.readyEntryForToken(maxCollateral.Denom)
	if err != nil {
		return err
	}
	debtEntry, err := a.readyEntryForToken(amountToRepay.Denom)
	if err != nil {
		return err
	}

	a.enteredMu.RLock()
	onCollateralMarket := a.entered[sender][collateralEntry.addr]
	onDebtMarket := a.entered[sender][debtEntry.addr]
	totalCL, err := a.totalCreditLineExcluding(sender, "")
	a.enteredMu.RUnlock()
	if !onCollateralMarket {
		return &common.NotOnMarket{Address: sender, Market: maxCollateral.Denom}
	}
	if !onDebtMarket {
		return &common.NotOnMarket{Address: sender, Market: amountToRepay.Denom}
	}
	if err != nil {
		return err
	}

	pC, err := a.oracle.Price(maxCollateral.Denom, a.config.CommonToken)
	if err != nil {
		return err
	}
	pD, err := a.oracle.Price(amountToRepay.Denom, a.config.CommonToken)
	if err != nil {
		return err
	}

	maxCollateralCommon := common.DecFromInt(maxCollateral.Amount).Mul(pC)
	simulatedCreditLine := common.SaturatingSubDec(totalCL.CreditLine, maxCollateralCommon.Mul(collateralEntry.view.CollateralRatio()))
	amountToRepayCommon := common.DecFromInt(amountToRepay.Amount).Mul(pD)
	simulatedDebt := common.SaturatingSubDec(totalCL.Debt, amountToRepayCommon)
	if simulatedDebt.GT(simulatedCreditLine) {
		return common.ErrRepayingLoanUsingCollateralFailed
	}

	got, err := collateralEntry.view.SwapWithdrawFrom(sender, maxCollateral.Amount, amountToRepay)
	if err != nil {
		return err
	}
	if err := debtEntry.view.RepayTo(sender, amountToRepay.Amount, got); err != nil {
		return err
	}

	a.recorder.Record("repay_with_collateral", map[string]string{
		"sender": string(sender), "collateral_denom": maxCollateral.Denom, "debt_denom": amountToRepay.Denom,
		"repaid": amountToRepay.Amount.String(),
	})
	return nil
}
