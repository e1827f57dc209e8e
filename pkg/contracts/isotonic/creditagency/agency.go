package creditagency

import (
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/market"
)

// Recorder observes committed Agency operations, purely an audit trail (see pkg/db).
type Recorder interface {
	Record(kind string, fields map[string]string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, map[string]string) {}

type marketState int

const (
	stateInstantiating marketState = iota
	stateReady
)

type marketEntry struct {
	token string
	state marketState
	addr  common.AccountID
	view  common.MarketView
}

// CreditAgency is the cross-market coordinator.
type CreditAgency struct {
	mu sync.RWMutex

	self   common.AccountID
	config Config

	byToken     map[string]*marketEntry
	pending     map[uint64]string // reply_id -> market_token
	nextReplyID uint64

	// enteredMu guards byAddr and entered separately from mu. A Market's DepositTo/Borrow
	// call back into EnterMarket (spec.md §4.4) from inside Liquidate/RepayWithCollateral,
	// which already hold mu for the duration of the operation; EnterMarket must never
	// block on mu or the same goroutine deadlocks against itself. Liquidate/
	// RepayWithCollateral take enteredMu only long enough to read entered-market
	// membership and release it before calling into any Market view method.
	enteredMu sync.RWMutex
	byAddr    map[common.AccountID]*marketEntry
	entered   map[common.AccountID]map[common.AccountID]bool // account -> set of market addresses

	oracle   market.PriceOracle
	logger   *zap.Logger
	recorder Recorder
}

// NewConfig bundles the external collaborators a CreditAgency needs at construction time.
type NewConfig struct {
	Self     common.AccountID
	Config   Config
	Oracle   market.PriceOracle
	Logger   *zap.Logger
	Recorder Recorder
}

// New instantiates a CreditAgency with an empty market registry.
func New(cfg NewConfig) (*CreditAgency, error) {
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CreditAgency{
		self:     cfg.Self,
		config:   cfg.Config,
		byToken:  map[string]*marketEntry{},
		byAddr:   map[common.AccountID]*marketEntry{},
		pending:  map[uint64]string{},
		entered:  map[common.AccountID]map[common.AccountID]bool{},
		oracle:   cfg.Oracle,
		logger:   logger,
		recorder: recorder,
	}, nil
}

// Address returns the Agency's own identity, used by Markets as config.credit_agency.
func (a *CreditAgency) Address() common.AccountID { return a.self }

func (a *CreditAgency) requireGov(caller common.AccountID) error {
	if caller != a.config.GovAddress {
		return common.ErrUnauthorized
	}
	return nil
}

// CreateMarket is governance-only (spec.md §4.4 "Market creation and the reply
// protocol"): it enforces collateral_ratio < liquidation_price, refuses a denom that
// already exists or is instantiating, and allocates a reply id. The actual child
// contract is instantiated by the caller (mirroring the host dispatching a child
// creation message after this handler returns); CompleteInstantiation or
// FailInstantiation finishes the state machine once that result is known.
func (a *CreditAgency) CreateMarket(caller common.AccountID, marketToken string, cfg market.Config) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireGov(caller); err != nil {
		return 0, err
	}
	if cfg.CollateralRatio.GTE(a.config.LiquidationPrice) {
		return 0, &common.MarketCfgCollateralFailure{CollateralRatio: cfg.CollateralRatio, LiquidationPrice: a.config.LiquidationPrice}
	}
	if existing, ok := a.byToken[marketToken]; ok {
		if existing.state == stateInstantiating {
			return 0, &common.MarketCreating{Denom: marketToken}
		}
		return 0, &common.MarketAlreadyExists{Denom: marketToken}
	}

	replyID := a.nextReplyID
	a.nextReplyID++
	a.pending[replyID] = marketToken
	a.byToken[marketToken] = &marketEntry{token: marketToken, state: stateInstantiating}

	a.logger.Info("market instantiation started", zap.String("market_token", marketToken), zap.Uint64("reply_id", replyID))
	a.recorder.Record("create_market", map[string]string{"market_token": marketToken, "reply_id": strconv.FormatUint(replyID, 10)})
	return replyID, nil
}

// CompleteInstantiation transitions a pending market to Ready (spec.md §4.4: "on reply
// it parses the returned contract address"), wiring its view into both lookup indexes.
// Takes mu then enteredMu, since it writes state covered by both.
func (a *CreditAgency) CompleteInstantiation(replyID uint64, addr common.AccountID, view common.MarketView) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	token, ok := a.pending[replyID]
	if !ok {
		return &common.UnrecognisedReply{ID: replyID}
	}
	delete(a.pending, replyID)

	entry := a.byToken[token]
	entry.state = stateReady
	entry.addr = addr
	entry.view = view

	a.enteredMu.Lock()
	a.byAddr[addr] = entry
	a.enteredMu.Unlock()

	a.logger.Info("market ready", zap.String("market_token", token), zap.String("address", string(addr)))
	a.recorder.Record("market_ready", map[string]string{"market_token": token, "address": string(addr)})
	return nil
}

// FailInstantiation records a reply failure. The registry entry is left Instantiating
// — spec.md §9 notes the source leaves this stuck with no cleanup path, and this
// library matches that rather than inventing a retry mechanism the original lacks.
func (a *CreditAgency) FailInstantiation(replyID uint64, cause error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.pending[replyID]; !ok {
		return &common.UnrecognisedReply{ID: replyID}
	}
	delete(a.pending, replyID)
	return &common.ReplyParseFailure{ID: replyID, Err: cause}
}

// EnterMarket implements common.AgencyView: a Market calls this after an account's
// first deposit or borrow. The caller-is-a-known-market check is implicit in looking
// `market` up in byAddr (spec.md §4.4: "implicitly: it authors the message").
//
// Guarded by enteredMu alone, never mu: Market.DepositTo/Borrow call this back while
// the Agency may already be mid-Liquidate on the same goroutine, holding mu for the
// whole operation. Taking mu here too would deadlock against itself.
func (a *CreditAgency) EnterMarket(market common.AccountID, account common.AccountID) error {
	a.enteredMu.Lock()
	defer a.enteredMu.Unlock()

	if _, ok := a.byAddr[market]; !ok {
		return common.ErrUnauthorized
	}
	if a.entered[account] == nil {
		a.entered[account] = map[common.AccountID]bool{}
	}
	a.entered[account][market] = true
	return nil
}

// ExitMarket removes `market` from sender's entered set (spec.md §4.4), failing
// DebtOnMarket if sender still owes debt there, or NotEnoughCollat if removing this
// market's collateral contribution would leave the remaining markets insolvent.
func (a *CreditAgency) ExitMarket(sender common.AccountID, marketAddr common.AccountID) error {
	a.enteredMu.Lock()
	defer a.enteredMu.Unlock()

	entry, ok := a.byAddr[marketAddr]
	if !ok {
		return common.ErrMarketSearchError
	}
	if !a.entered[sender][marketAddr] {
		return &common.NotOnMarket{Address: sender, Market: entry.token}
	}

	cl, err := entry.view.CreditLine(sender)
	if err != nil {
		return err
	}
	if !cl.Debt.IsZero() {
		return &common.DebtOnMarket{Address: sender, Market: entry.token, Debt: common.NewCoin(a.config.CommonToken, cl.Debt.TruncateInt())}
	}

	remaining, err := a.totalCreditLineExcluding(sender, marketAddr)
	if err != nil {
		return err
	}
	if remaining.Debt.GT(remaining.CreditLine) {
		return &common.NotEnoughCollat{Debt: remaining.Debt, CreditLine: remaining.CreditLine, Collateral: remaining.Collateral}
	}

	delete(a.entered[sender], marketAddr)
	return nil
}

// TotalCreditLine implements common.AgencyView by summing CreditLine across every
// market sender has entered (spec.md §4.4 "Aggregation").
func (a *CreditAgency) TotalCreditLine(account common.AccountID) (common.CreditLine, error) {
	a.enteredMu.RLock()
	defer a.enteredMu.RUnlock()
	return a.totalCreditLineExcluding(account, "")
}

// totalCreditLineExcluding requires the caller already hold at least enteredMu.RLock().
func (a *CreditAgency) totalCreditLineExcluding(account common.AccountID, exclude common.AccountID) (common.CreditLine, error) {
	total := common.ZeroCreditLine()
	for addr := range a.entered[account] {
		if addr == exclude {
			continue
		}
		entry, ok := a.byAddr[addr]
		if !ok || entry.state != stateReady {
			continue
		}
		if entry.view.CommonToken() != a.config.CommonToken {
			return common.CreditLine{}, &common.InvalidCommonTokenDenom{Expected: a.config.CommonToken, Actual: entry.view.CommonToken()}
		}
		cl, err := entry.view.CreditLine(account)
		if err != nil {
			return common.CreditLine{}, err
		}
		total = total.Add(cl)
	}
	return total, nil
}

// IsOnMarket reports whether account currently has an entered position on marketAddr.
func (a *CreditAgency) IsOnMarket(account common.AccountID, marketAddr common.AccountID) bool {
	a.enteredMu.RLock()
	defer a.enteredMu.RUnlock()
	return a.entered[account][marketAddr]
}

// ListEnteredMarkets returns account's entered market addresses, ascending, with the
// same exclusive-cursor pagination as ListMarkets (spec.md §6).
func (a *CreditAgency) ListEnteredMarkets(account common.AccountID, startAfter *common.AccountID, limit *int) []common.AccountID {
	a.enteredMu.RLock()
	defer a.enteredMu.RUnlock()

	addrs := make([]string, 0, len(a.entered[account]))
	for addr := range a.entered[account] {
		addrs = append(addrs, string(addr))
	}
	sort.Strings(addrs)

	n := common.ClampLimit(limit)
	out := make([]common.AccountID, 0, n)
	for _, addr := range addrs {
		if startAfter != nil && addr <= string(*startAfter) {
			continue
		}
		if len(out) >= n {
			break
		}
		out = append(out, common.AccountID(addr))
	}
	return out
}
