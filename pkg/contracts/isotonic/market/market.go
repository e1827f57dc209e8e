// Package market implements one per-asset lending pool (spec.md §4.3): it owns cash,
// issues L/B position tokens, charges interest on a fixed epoch, enforces per-account
// withdraw/borrow limits via the Credit Agency, and executes AMM-backed swap-withdraw.
package market

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/token"
)

// PriceOracle is the slice of Oracle behaviour a Market depends on; a concrete
// *oracle.Oracle satisfies it structurally.
type PriceOracle interface {
	Price(sell, buy string) (sdkmath.LegacyDec, error)
	EstimateSwapExactOut(sell string, buy common.Coin) (sdkmath.Int, error)
	Swap(sell string, sellLimit sdkmath.Int, buy common.Coin) (sdkmath.Int, error)
}

// Recorder observes committed Market operations; purely an audit trail, never
// consulted for correctness (see pkg/db.EventRecorder and SPEC_FULL.md §2).
type Recorder interface {
	Record(kind string, fields map[string]string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, map[string]string) {}

// Market is one per-asset lending pool.
type Market struct {
	mu sync.RWMutex

	self   common.AccountID
	config Config

	ltoken *token.Token
	btoken *token.Token

	cash    sdkmath.Int
	reserve sdkmath.Int

	lastCharged int64

	agency common.AgencyView
	oracle PriceOracle

	now      func() int64
	logger   *zap.Logger
	recorder Recorder
}

// NewConfig bundles the external collaborators a Market needs at construction time.
type NewConfig struct {
	Self   common.AccountID
	Config Config
	Now    int64 // instantiation timestamp, unix seconds

	// AgencyAddress is the instantiating caller, recorded as config.CreditAgency
	// (spec.md §4.3 Lifecycle) — the only address allowed to call privileged
	// Market operations.
	AgencyAddress common.AccountID
	Agency        common.AgencyView
	Oracle        PriceOracle
	Clock    func() int64 // defaults to a fixed clock returning Now if nil
	Logger   *zap.Logger
	Recorder Recorder
}

// New instantiates a Market and its paired L/B tokens (spec.md §4.3 "Lifecycle"):
// last_charged is aligned down to the nearest charge-period boundary, and
// credit_agency is set to the instantiating caller.
func New(cfg NewConfig) (*Market, error) {
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	cfg.Config.CreditAgency = cfg.AgencyAddress

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	clock := cfg.Clock
	if clock == nil {
		fixed := cfg.Now
		clock = func() int64 { return fixed }
	}

	m := &Market{
		self:        cfg.Self,
		config:      cfg.Config,
		cash:        sdkmath.ZeroInt(),
		reserve:     sdkmath.ZeroInt(),
		lastCharged: cfg.Now - (cfg.Now % cfg.Config.ChargePeriod),
		agency:      cfg.Agency,
		oracle:      cfg.Oracle,
		now:         clock,
		logger:      logger,
		recorder:    recorder,
	}

	m.ltoken = token.New(token.Config{
		Name: cfg.Config.MarketToken + " Lent", Symbol: "L" + cfg.Config.MarketToken,
		Decimals: 6, Self: cfg.Self + "-ltoken", Controller: m, Logger: logger,
	})
	m.btoken = token.New(token.Config{
		Name: cfg.Config.MarketToken + " Borrowed", Symbol: "B" + cfg.Config.MarketToken,
		Decimals: 6, Self: cfg.Self + "-btoken", Controller: m, Logger: logger,
	})

	return m, nil
}

// Address returns the Market's own identity (common.MarketView).
func (m *Market) Address() common.AccountID { return m.self }

// MarketToken returns the asset this market lends and borrows (common.MarketView).
func (m *Market) MarketToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.MarketToken
}

// CommonToken returns the price-quote denom this market's oracle rates are expressed in
// (common.MarketView) — the Credit Agency checks this against its own common_token
// before folding a market's CreditLine into a cross-market aggregate.
func (m *Market) CommonToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.CommonToken
}

// CollateralRatio returns config.collateral_ratio (common.MarketView) — the Credit
// Agency needs it directly to compute a liquidation's seize limit.
func (m *Market) CollateralRatio() sdkmath.LegacyDec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.CollateralRatio
}

// LToken and BToken expose the paired position tokens for queries and for wiring a
// Market into test fixtures.
func (m *Market) LToken() *token.Token { return m.ltoken }
func (m *Market) BToken() *token.Token { return m.btoken }

// TransferableAmount implements token.Controller for both the L-token and the B-token
// this Market owns. For the L-token it mirrors Withdrawable's cap (a transfer out of L
// is exactly as constrained as a withdrawal, minus the cash check since no cash moves).
// For the B-token, spec.md leaves Transfer's debt-assignment semantics unspecified; we
// permit transferring up to the account's full B balance, since assuming someone else's
// debt share carries no additional collateral risk to the protocol beyond what BurnFrom
// already checks.
func (m *Market) TransferableAmount(tok common.AccountID, account common.AccountID) (sdkmath.Int, error) {
	switch tok {
	case m.ltoken.Address():
		return m.transferableL(account)
	case m.btoken.Address():
		return m.btoken.Balance(account), nil
	default:
		return sdkmath.Int{}, &common.UnrecognisedToken{Addr: tok}
	}
}

// accrue runs spec.md §4.3's "Interest accrual — the hot path" and is called at the
// top of every Market operation before any balance-dependent decision.
func (m *Market) accrue() error {
	bSupply := m.btoken.TotalSupply()
	lSupply := m.ltoken.TotalSupply()

	result, err := computeAccrual(
		m.now(), m.lastCharged, m.config.ChargePeriod,
		m.config.Curve, m.config.ReserveFactor,
		bSupply, lSupply, m.cash, m.reserve,
	)
	if err != nil {
		return err
	}
	if result == nil {
		return nil // no-op: same epoch, or L supply is zero
	}

	m.lastCharged += result.epochs * m.config.ChargePeriod
	m.reserve = m.reserve.Add(result.reserveCut)

	if err := m.btoken.Rebase(sdkmath.LegacyOneDec().Add(result.bRatio)); err != nil {
		return err
	}
	if err := m.ltoken.Rebase(sdkmath.LegacyOneDec().Add(result.lRatio)); err != nil {
		return err
	}

	m.logger.Debug("market accrued interest",
		zap.String("market_token", m.config.MarketToken),
		zap.Int64("epochs", result.epochs),
		zap.String("utilisation", result.utilisation.String()),
		zap.String("annual_rate", result.annualRate.String()),
		zap.String("charged", result.charged.String()))
	m.recorder.Record("accrue", map[string]string{
		"market_token": m.config.MarketToken,
		"epochs":       sdkmath.NewInt(result.epochs).String(),
		"charged":      result.charged.String(),
	})
	return nil
}

func checkSingleCoin(funds []common.Coin, expectedDenom string) (common.Coin, error) {
	if len(funds) == 0 {
		return common.Coin{}, common.ErrNoFundsSent
	}
	if len(funds) > 1 {
		return common.Coin{}, &common.ExtraDenoms{Expected: expectedDenom}
	}
	coin := funds[0]
	if coin.Denom != expectedDenom {
		return common.Coin{}, &common.InvalidDenom{Expected: expectedDenom, Actual: coin.Denom}
	}
	if coin.IsZero() {
		return common.Coin{}, common.ErrNoFundsSent
	}
	return coin, nil
}

// Deposit credits funds to sender's L-token balance (spec.md §4.3).
func (m *Market) Deposit(sender common.AccountID, funds []common.Coin) error {
	return m.depositTo(sender, sender, funds)
}

// DepositTo credits funds to account's L-token balance on sender's behalf.
func (m *Market) DepositTo(sender, account common.AccountID, funds []common.Coin) error {
	return m.depositTo(sender, account, funds)
}

func (m *Market) depositTo(sender, account common.AccountID, funds []common.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.accrue(); err != nil {
		return err
	}

	coin, err := checkSingleCoin(funds, m.config.MarketToken)
	if err != nil {
		return err
	}

	lSupply := m.ltoken.TotalSupply()
	newSupply := lSupply.Add(coin.Amount)
	if m.config.MarketCap != nil && newSupply.GT(*m.config.MarketCap) {
		return &common.DepositOverCap{AttemptedDeposit: coin.Amount, LTokenSupply: lSupply, Cap: *m.config.MarketCap}
	}

	if err := m.ltoken.Mint(account, coin.Amount); err != nil {
		return err
	}
	m.cash = m.cash.Add(coin.Amount)

	if err := m.agency.EnterMarket(m.self, account); err != nil {
		return err
	}

	m.logger.Info("deposit", zap.String("market_token", m.config.MarketToken), zap.String("account", string(account)), zap.String("amount", coin.Amount.String()))
	m.recorder.Record("deposit", map[string]string{"market_token": m.config.MarketToken, "account": string(account), "amount": coin.Amount.String()})
	return nil
}

// Withdraw burns amount of sender's L-token and pays out market_token (spec.md §4.3).
func (m *Market) Withdraw(sender common.AccountID, amount sdkmath.Int) (common.Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.accrue(); err != nil {
		return common.Coin{}, err
	}

	transferable, err := m.withdrawable(sender)
	if err != nil {
		return common.Coin{}, err
	}
	if amount.GT(transferable) {
		return common.Coin{}, &common.CannotWithdraw{Account: sender, Amount: amount}
	}

	if err := m.ltoken.BurnFrom(sender, amount); err != nil {
		return common.Coin{}, err
	}
	m.cash = m.cash.Sub(amount)

	m.recorder.Record("withdraw", map[string]string{"market_token": m.config.MarketToken, "account": string(sender), "amount": amount.String()})
	return common.NewCoin(m.config.MarketToken, amount), nil
}

// Borrow mints amount of B-token to sender and pays out market_token (spec.md §4.3).
func (m *Market) Borrow(sender common.AccountID, amount sdkmath.Int) (common.Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.accrue(); err != nil {
		return common.Coin{}, err
	}

	available, err := m.availableLocal(sender)
	if err != nil {
		return common.Coin{}, err
	}
	if amount.GT(available) {
		return common.Coin{}, &common.CannotBorrow{Amount: amount, Account: sender}
	}

	if err := m.btoken.Mint(sender, amount); err != nil {
		return common.Coin{}, err
	}
	m.cash = m.cash.Sub(amount)

	if err := m.agency.EnterMarket(m.self, sender); err != nil {
		return common.Coin{}, err
	}

	m.recorder.Record("borrow", map[string]string{"market_token": m.config.MarketToken, "account": string(sender), "amount": amount.String()})
	return common.NewCoin(m.config.MarketToken, amount), nil
}

// Repay burns min(funds, debt) of sender's B-token and refunds any excess
// (spec.md §4.3: "No debt check needed — overpay is refunded, not rejected").
func (m *Market) Repay(sender common.AccountID, funds []common.Coin) (refund common.Coin, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.accrue(); err != nil {
		return common.Coin{}, err
	}

	coin, err := checkSingleCoin(funds, m.config.MarketToken)
	if err != nil {
		return common.Coin{}, err
	}

	debt := m.btoken.Balance(sender)
	repay := common.MinInt(coin.Amount, debt)
	if repay.IsPositive() {
		if err := m.btoken.BurnFrom(sender, repay); err != nil {
			return common.Coin{}, err
		}
		m.cash = m.cash.Add(repay)
	}

	m.recorder.Record("repay", map[string]string{"market_token": m.config.MarketToken, "account": string(sender), "amount": repay.String()})
	return common.NewCoin(m.config.MarketToken, coin.Amount.Sub(repay)), nil
}
