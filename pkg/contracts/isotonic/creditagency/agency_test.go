package creditagency

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/market"
)

func dec(s string) sdkmath.LegacyDec {
	d, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeMarketView is a common.MarketView double recording its calls, letting liquidation
// and exit-market tests exercise the Agency's orchestration logic without constructing a
// full *market.Market (matching the in-package fake-collaborator style market_test.go
// already uses for common.AgencyView/market.PriceOracle).
type fakeMarketView struct {
	addr            common.AccountID
	marketToken     string
	commonToken     string
	collateralRatio sdkmath.LegacyDec
	creditLines     map[common.AccountID]common.CreditLine

	swapCalls   []common.Coin
	repayCalls  []sdkmath.Int
	distributed []common.Coin
	deposited   []common.Coin
}

func (v *fakeMarketView) Address() common.AccountID          { return v.addr }
func (v *fakeMarketView) MarketToken() string                { return v.marketToken }
func (v *fakeMarketView) CommonToken() string                { return v.commonToken }
func (v *fakeMarketView) CollateralRatio() sdkmath.LegacyDec { return v.collateralRatio }

func (v *fakeMarketView) CreditLine(account common.AccountID) (common.CreditLine, error) {
	if cl, ok := v.creditLines[account]; ok {
		return cl, nil
	}
	return common.ZeroCreditLine(), nil
}

func (v *fakeMarketView) DepositTo(_ common.AccountID, funds common.Coin) error {
	v.deposited = append(v.deposited, funds)
	return nil
}

func (v *fakeMarketView) SwapWithdrawFrom(_ common.AccountID, _ sdkmath.Int, buy common.Coin) (common.Coin, error) {
	v.swapCalls = append(v.swapCalls, buy)
	return buy, nil
}

func (v *fakeMarketView) RepayTo(_ common.AccountID, amount sdkmath.Int, _ common.Coin) error {
	v.repayCalls = append(v.repayCalls, amount)
	return nil
}

func (v *fakeMarketView) DistributeAsLTokens(funds common.Coin) error {
	v.distributed = append(v.distributed, funds)
	return nil
}

func (v *fakeMarketView) AdjustCommonToken(newToken string) error {
	v.commonToken = newToken
	return nil
}

type fakeOracle struct {
	prices map[[2]string]sdkmath.LegacyDec
}

func newFakeOracle() *fakeOracle { return &fakeOracle{prices: map[[2]string]sdkmath.LegacyDec{}} }

func (o *fakeOracle) set(sell, buy string, price sdkmath.LegacyDec) {
	o.prices[[2]string{sell, buy}] = price
}

func (o *fakeOracle) Price(sell, buy string) (sdkmath.LegacyDec, error) {
	if sell == buy {
		return sdkmath.LegacyOneDec(), nil
	}
	p, ok := o.prices[[2]string{sell, buy}]
	if !ok {
		panic("fakeOracle: no price set for " + sell + "->" + buy)
	}
	return p, nil
}

func (o *fakeOracle) EstimateSwapExactOut(string, common.Coin) (sdkmath.Int, error) {
	panic("unused")
}

func (o *fakeOracle) Swap(string, sdkmath.Int, common.Coin) (sdkmath.Int, error) {
	panic("unused")
}

func newTestAgency(t *testing.T, oracle market.PriceOracle) *CreditAgency {
	t.Helper()
	cfg := Config{
		GovAddress:               "gov",
		MarketCodeID:             1,
		TokenCodeID:              2,
		CommonToken:              "uusdc",
		LiquidationPrice:         dec("0.9"),
		LiquidationFee:           dec("0.05"),
		LiquidationInitiationFee: dec("0.01"),
	}
	a, err := New(NewConfig{Self: "agency1", Config: cfg, Oracle: oracle})
	require.NoError(t, err)
	return a
}

// registerReadyMarket wires a fakeMarketView directly into the registry, bypassing the
// CreateMarket/CompleteInstantiation reply dance — that state machine is covered
// separately by TestCreateMarketReplyLifecycle.
func registerReadyMarket(a *CreditAgency, view *fakeMarketView) {
	entry := &marketEntry{token: view.marketToken, state: stateReady, addr: view.addr, view: view}
	a.byToken[view.marketToken] = entry
	a.byAddr[view.addr] = entry
}

func enter(a *CreditAgency, account, marketAddr common.AccountID) {
	if a.entered[account] == nil {
		a.entered[account] = map[common.AccountID]bool{}
	}
	a.entered[account][marketAddr] = true
}

func TestCreateMarketGovOnly(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	_, err := a.CreateMarket("not-gov", "uatom", market.Config{CollateralRatio: dec("0.5")})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCreateMarketRejectsBadCollateralRatio(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	_, err := a.CreateMarket("gov", "uatom", market.Config{CollateralRatio: dec("0.95")})
	require.Error(t, err)
	var target *common.MarketCfgCollateralFailure
	assert.ErrorAs(t, err, &target)
}

func TestCreateMarketReplyLifecycle(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	replyID, err := a.CreateMarket("gov", "uatom", market.Config{CollateralRatio: dec("0.5")})
	require.NoError(t, err)

	_, err = a.CreateMarket("gov", "uatom", market.Config{CollateralRatio: dec("0.5")})
	var creating *common.MarketCreating
	assert.ErrorAs(t, err, &creating)

	view := &fakeMarketView{addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5")}
	require.NoError(t, a.CompleteInstantiation(replyID, "market-atom", view))

	_, err = a.CreateMarket("gov", "uatom", market.Config{CollateralRatio: dec("0.5")})
	var exists *common.MarketAlreadyExists
	assert.ErrorAs(t, err, &exists)

	err = a.CompleteInstantiation(replyID, "market-atom", view)
	var unrecognised *common.UnrecognisedReply
	assert.ErrorAs(t, err, &unrecognised)
}

func TestFailInstantiationLeavesEntryStuckInstantiating(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	replyID, err := a.CreateMarket("gov", "uatom", market.Config{CollateralRatio: dec("0.5")})
	require.NoError(t, err)

	err = a.FailInstantiation(replyID, assertCause())
	var parseFail *common.ReplyParseFailure
	require.ErrorAs(t, err, &parseFail)

	entry := a.byToken["uatom"]
	assert.Equal(t, stateInstantiating, entry.state)
	_, isPending := a.pending[replyID]
	assert.False(t, isPending)
}

func assertCause() error { return common.ErrInvalidConfig }

func TestEnterMarketRejectsUnknownMarket(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	err := a.EnterMarket("not-a-market", "alice")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestExitMarketDebtOnMarketBlocksExit(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	view := &fakeMarketView{
		addr: "market-eth", marketToken: "ueth", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"alice": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("200")},
		},
	}
	registerReadyMarket(a, view)
	enter(a, "alice", "market-eth")

	err := a.ExitMarket("alice", "market-eth")
	var debtOnMarket *common.DebtOnMarket
	require.ErrorAs(t, err, &debtOnMarket)
	assert.True(t, a.entered["alice"]["market-eth"])
}

func TestExitMarketNotEnoughCollatBlocksExit(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"alice": {Collateral: dec("1000"), CreditLine: dec("500"), Debt: dec("0")},
		},
	}
	debtView := &fakeMarketView{
		addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"alice": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("200")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "alice", "market-atom")
	enter(a, "alice", "market-usdc")

	err := a.ExitMarket("alice", "market-atom")
	var notEnough *common.NotEnoughCollat
	require.ErrorAs(t, err, &notEnough)
	assert.Equal(t, dec("200"), notEnough.Debt)
	assert.Equal(t, dec("0"), notEnough.CreditLine)
}

func TestExitMarketSucceedsWhenSolventElsewhere(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{"alice": common.ZeroCreditLine()},
	}
	otherView := &fakeMarketView{
		addr: "market-osmo", marketToken: "uosmo", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"alice": {Collateral: dec("1000"), CreditLine: dec("500"), Debt: dec("100")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, otherView)
	enter(a, "alice", "market-atom")
	enter(a, "alice", "market-osmo")

	require.NoError(t, a.ExitMarket("alice", "market-atom"))
	assert.False(t, a.entered["alice"]["market-atom"])
}

func TestTotalCreditLineInvalidCommonTokenDenom(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	view := &fakeMarketView{addr: "market-atom", marketToken: "uatom", commonToken: "wrong-denom", collateralRatio: dec("0.5")}
	registerReadyMarket(a, view)
	enter(a, "alice", "market-atom")

	_, err := a.TotalCreditLine("alice")
	var mismatch *common.InvalidCommonTokenDenom
	assert.ErrorAs(t, err, &mismatch)
}

func TestListMarketsPagination(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	tokens := []string{"uatom", "ubtc", "ueth", "uosmo", "uusdc"}
	for _, tok := range tokens {
		registerReadyMarket(a, &fakeMarketView{addr: common.AccountID("market-" + tok), marketToken: tok, commonToken: "uusdc", collateralRatio: dec("0.5")})
	}

	limit := 2
	page1 := a.ListMarkets(nil, &limit)
	require.Len(t, page1, 2)
	assert.Equal(t, "uatom", page1[0].MarketToken)
	assert.Equal(t, "ubtc", page1[1].MarketToken)

	cursor := page1[1].MarketToken
	page2 := a.ListMarkets(&cursor, &limit)
	require.Len(t, page2, 2)
	assert.Equal(t, "ueth", page2[0].MarketToken)
	assert.Equal(t, "uosmo", page2[1].MarketToken)
}

func TestListEnteredMarketsPagination(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	enter(a, "alice", "market-a")
	enter(a, "alice", "market-b")
	enter(a, "alice", "market-c")

	limit := 2
	page := a.ListEnteredMarkets("alice", nil, &limit)
	require.Len(t, page, 2)
	assert.Equal(t, common.AccountID("market-a"), page[0])
	assert.Equal(t, common.AccountID("market-b"), page[1])
}

func TestLiquidateRejectsWhenSolvent(t *testing.T) {
	oracle := newFakeOracle()
	a := newTestAgency(t, oracle)
	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"bob": {Collateral: dec("1000"), CreditLine: dec("500"), Debt: dec("100")},
		},
	}
	debtView := &fakeMarketView{
		addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"bob": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("100")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "bob", "market-atom")
	enter(a, "bob", "market-usdc")

	err := a.Liquidate("liquidator", "bob", "uatom", common.NewCoin("uusdc", sdkmath.NewInt(50)))
	assert.ErrorIs(t, err, common.ErrLiquidationNotAllowed)
}

// TestLiquidateSeizesCollateralAndDisbursesFees exercises spec.md §8's S3 mechanics at a
// smaller scale: a 300-uusdc repay at a 10:1 ATOM price inflates the swap buy amount by
// (1 + liquidation_fee + liquidation_initiation_fee) and splits the proceeds across
// RepayTo (principal), DistributeAsLTokens (lender fee), and DepositTo (liquidator fee).
func TestLiquidateSeizesCollateralAndDisbursesFees(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set("uatom", "uusdc", dec("10"))
	oracle.set("uusdc", "uusdc", sdkmath.LegacyOneDec())
	a := newTestAgency(t, oracle)

	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"bob": {Collateral: dec("1000"), CreditLine: dec("500"), Debt: dec("0")},
		},
	}
	debtView := &fakeMarketView{
		addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"bob": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("700")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "bob", "market-atom")
	enter(a, "bob", "market-usdc")

	repay := common.NewCoin("uusdc", sdkmath.NewInt(300))
	require.NoError(t, a.Liquidate("liquidator", "bob", "uatom", repay))

	require.Len(t, collateralView.swapCalls, 1)
	// buy = 300 * (1 + 0.05 + 0.01) = 318
	assert.Equal(t, sdkmath.NewInt(318), collateralView.swapCalls[0].Amount)

	require.Len(t, debtView.repayCalls, 1)
	assert.Equal(t, sdkmath.NewInt(300), debtView.repayCalls[0])
	require.Len(t, debtView.distributed, 1)
	assert.Equal(t, sdkmath.NewInt(15), debtView.distributed[0].Amount)
	require.Len(t, debtView.deposited, 1)
	assert.Equal(t, sdkmath.NewInt(3), debtView.deposited[0].Amount)
}

func TestLiquidateRejectsNotOnCollateralMarket(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set("uatom", "uusdc", dec("10"))
	a := newTestAgency(t, oracle)

	collateralView := &fakeMarketView{addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5")}
	debtView := &fakeMarketView{addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5")}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "bob", "market-usdc")

	err := a.Liquidate("liquidator", "bob", "uatom", common.NewCoin("uusdc", sdkmath.NewInt(10)))
	var notOnMarket *common.NotOnMarket
	assert.ErrorAs(t, err, &notOnMarket)
}

func TestRepayWithCollateralRejectsWhenWouldLeaveInsolvent(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set("uatom", "uusdc", dec("10"))
	a := newTestAgency(t, oracle)

	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.1"),
		creditLines: map[common.AccountID]common.CreditLine{
			"carol": {Collateral: dec("100"), CreditLine: dec("10"), Debt: dec("0")},
		},
	}
	debtView := &fakeMarketView{
		addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"carol": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("500")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "carol", "market-atom")
	enter(a, "carol", "market-usdc")

	err := a.RepayWithCollateral("carol", common.NewCoin("uatom", sdkmath.NewInt(5)), common.NewCoin("uusdc", sdkmath.NewInt(50)))
	assert.ErrorIs(t, err, common.ErrRepayingLoanUsingCollateralFailed)
}

func TestRepayWithCollateralSucceeds(t *testing.T) {
	oracle := newFakeOracle()
	oracle.set("uatom", "uusdc", dec("10"))
	a := newTestAgency(t, oracle)

	collateralView := &fakeMarketView{
		addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.9"),
		creditLines: map[common.AccountID]common.CreditLine{
			"carol": {Collateral: dec("1000"), CreditLine: dec("900"), Debt: dec("0")},
		},
	}
	debtView := &fakeMarketView{
		addr: "market-usdc", marketToken: "uusdc", commonToken: "uusdc", collateralRatio: dec("0.5"),
		creditLines: map[common.AccountID]common.CreditLine{
			"carol": {Collateral: dec("0"), CreditLine: dec("0"), Debt: dec("50")},
		},
	}
	registerReadyMarket(a, collateralView)
	registerReadyMarket(a, debtView)
	enter(a, "carol", "market-atom")
	enter(a, "carol", "market-usdc")

	err := a.RepayWithCollateral("carol", common.NewCoin("uatom", sdkmath.NewInt(5)), common.NewCoin("uusdc", sdkmath.NewInt(50)))
	require.NoError(t, err)
	require.Len(t, debtView.repayCalls, 1)
	assert.Equal(t, sdkmath.NewInt(50), debtView.repayCalls[0])
}

func TestAdjustCommonTokenFansOutToReadyMarkets(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	view := &fakeMarketView{addr: "market-atom", marketToken: "uatom", commonToken: "uusdc", collateralRatio: dec("0.5")}
	registerReadyMarket(a, view)

	require.NoError(t, a.AdjustCommonToken("gov", "uaxl"))
	assert.Equal(t, "uaxl", view.commonToken)
	assert.Equal(t, "uaxl", a.Configuration().CommonToken)
}

func TestAdjustLiquidationRejectsOutOfRangeValues(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	bad := dec("1.5")
	err := a.AdjustLiquidation("gov", &bad, nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Equal(t, dec("0.9"), a.Configuration().LiquidationPrice)
}

func TestMigrateMarketRequiresKnownReadyMarket(t *testing.T) {
	a := newTestAgency(t, newFakeOracle())
	err := a.MigrateMarket("gov", "unknown", []byte("{}"))
	assert.ErrorIs(t, err, common.ErrMarketSearchError)
}
