// Package token implements the rebasing position token used as both the L-share and
// B-share ledger of a Market (spec.md §4.1): display/stored balance conversion, a
// controller-gated transfer surface (mint/burn/rebase do not check their caller), and an
// ERC-2222-style pro-rata reward
// distribution ledger.
package token

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// Controller is the authority a Token defers to on every transfer — the owning Market,
// structurally. Mint, BurnFrom and Rebase take no caller and do not consult it.
type Controller interface {
	// TransferableAmount returns the maximum display amount `account` may move out of
	// `token`, used to gate Transfer/Send (spec.md §4.1).
	TransferableAmount(token common.AccountID, account common.AccountID) (sdkmath.Int, error)
}

// Token is one rebasing L or B position-token instance, scoped to a single Market.
type Token struct {
	mu sync.RWMutex

	name     string
	symbol   string
	decimals uint32

	self       common.AccountID
	controller Controller

	// balances and totalSupply are STORED amounts; every external-facing method takes
	// and returns DISPLAY amounts, converted at the boundary per spec.md §4.1.
	balances    map[common.AccountID]sdkmath.Int
	totalSupply sdkmath.Int

	// multiplier is a rational >= 1: display = stored * multiplier.
	multiplier sdkmath.LegacyDec

	// rewards is the ERC-2222-style distribution ledger for distributedToken.
	rewards        rewardLedger
	distributedToken string

	logger *zap.Logger
}

// Config seeds a new Token.
type Config struct {
	Name             string
	Symbol           string
	Decimals         uint32
	Self             common.AccountID
	Controller       Controller
	DistributedToken string
	Logger           *zap.Logger
}

// New constructs a Token with multiplier 1 and empty balances, matching spec.md §3
// ("multiplier: ... initially 1").
func New(cfg Config) *Token {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Token{
		name:             cfg.Name,
		symbol:           cfg.Symbol,
		decimals:         cfg.Decimals,
		self:             cfg.Self,
		controller:       cfg.Controller,
		balances:         make(map[common.AccountID]sdkmath.Int),
		totalSupply:      sdkmath.ZeroInt(),
		multiplier:       sdkmath.LegacyOneDec(),
		distributedToken: cfg.DistributedToken,
		rewards:          newRewardLedger(),
		logger:           logger,
	}
}

// toStored converts a display amount to its stored representation, rounding toward
// zero (spec.md §4.1: "integer division, rounded toward zero").
func (t *Token) toStored(display sdkmath.Int) sdkmath.Int {
	if t.multiplier.Equal(sdkmath.LegacyOneDec()) {
		return display
	}
	return common.DecFromInt(display).Quo(t.multiplier).TruncateInt()
}

// toDisplay converts a stored amount to its display representation, rounding toward
// zero (spec.md §4.1: "full-precision multiplication, rounded toward zero").
func (t *Token) toDisplay(stored sdkmath.Int) sdkmath.Int {
	return t.multiplier.MulInt(stored).TruncateInt()
}

// Balance returns the display balance of account.
func (t *Token) Balance(account common.AccountID) sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.toDisplay(t.storedBalance(account))
}

func (t *Token) storedBalance(account common.AccountID) sdkmath.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

// StoredBalance returns the internal stored balance of account, used by Market's
// virtual-accrual queries to project a post-rebase display amount without mutating
// any state.
func (t *Token) StoredBalance(account common.AccountID) sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.storedBalance(account)
}

// TotalSupply returns the display total supply.
func (t *Token) TotalSupply() sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.toDisplay(t.totalSupply)
}

// Multiplier returns the current rebase multiplier.
func (t *Token) Multiplier() sdkmath.LegacyDec {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.multiplier
}

// Mint credits recipient with displayAmt (spec.md §4.1). It does not check who calls it.
func (t *Token) Mint(recipient common.AccountID, displayAmt sdkmath.Int) error {
	if displayAmt.IsZero() {
		return common.ErrInvalidZeroAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := t.toStored(displayAmt)
	before := t.storedBalance(recipient)
	after := before.Add(stored)
	t.balances[recipient] = after
	t.totalSupply = t.totalSupply.Add(stored)

	t.rewards.onBalanceChange(recipient, stored, true)
	t.logger.Debug("token mint",
		zap.String("symbol", t.symbol), zap.String("recipient", string(recipient)), zap.String("amount", displayAmt.String()))
	return nil
}

// BurnFrom debits owner's display balance by displayAmt. It does not check who calls it.
func (t *Token) BurnFrom(owner common.AccountID, displayAmt sdkmath.Int) error {
	if displayAmt.IsZero() {
		return common.ErrInvalidZeroAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	availableDisplay := t.toDisplay(t.storedBalance(owner))
	if availableDisplay.LT(displayAmt) {
		return &common.InsufficientTokens{Available: availableDisplay, Needed: displayAmt}
	}

	stored := t.toStored(displayAmt)
	before := t.storedBalance(owner)
	after := before.Sub(stored)
	t.balances[owner] = after
	t.totalSupply = t.totalSupply.Sub(stored)

	t.rewards.onBalanceChange(owner, stored, false)
	t.logger.Debug("token burn",
		zap.String("symbol", t.symbol), zap.String("owner", string(owner)), zap.String("amount", displayAmt.String()))
	return nil
}

// Transfer moves displayAmt from sender to dst, subject to the controller's
// TransferableAmount cap (spec.md §4.1).
func (t *Token) Transfer(sender, dst common.AccountID, displayAmt sdkmath.Int) error {
	if displayAmt.IsZero() {
		return common.ErrInvalidZeroAmount
	}
	if err := t.checkTransferable(sender, displayAmt); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	senderBefore := t.storedBalance(sender)
	if t.toDisplay(senderBefore).LT(displayAmt) {
		return &common.InsufficientTokens{Available: t.toDisplay(senderBefore), Needed: displayAmt}
	}

	stored := t.toStored(displayAmt)
	t.balances[sender] = senderBefore.Sub(stored)
	dstBefore := t.storedBalance(dst)
	t.balances[dst] = dstBefore.Add(stored)

	t.rewards.onBalanceChange(sender, stored, false)
	t.rewards.onBalanceChange(dst, stored, true)
	return nil
}

// ReceiveHook is the callback signature a Send's target contract implements.
type ReceiveHook func(sender common.AccountID, amount sdkmath.Int, payload []byte) error

// Send transfers displayAmt from sender to contract and then invokes hook with payload,
// modelling the receive-callback message dispatch spec.md §4.1 requires of Send.
func (t *Token) Send(sender, contract common.AccountID, displayAmt sdkmath.Int, payload []byte, hook ReceiveHook) error {
	if err := t.Transfer(sender, contract, displayAmt); err != nil {
		return err
	}
	if hook == nil {
		return nil
	}
	return hook(sender, displayAmt, payload)
}

func (t *Token) checkTransferable(sender common.AccountID, displayAmt sdkmath.Int) error {
	max, err := t.controller.TransferableAmount(t.self, sender)
	if err != nil {
		return err
	}
	if displayAmt.GT(max) {
		return &common.CannotTransfer{MaxTransferable: max}
	}
	return nil
}

// Rebase multiplies the multiplier by ratio; it does not check who calls it. It never touches a
// per-account balance (spec.md §4.1).
func (t *Token) Rebase(ratio sdkmath.LegacyDec) error {
	if ratio.IsNegative() {
		return fmt.Errorf("%w: rebase ratio must be non-negative", common.ErrOverflow)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.multiplier = t.multiplier.Mul(ratio)
	t.logger.Debug("token rebase", zap.String("symbol", t.symbol), zap.String("ratio", ratio.String()), zap.String("multiplier", t.multiplier.String()))
	return nil
}

// Name, Symbol, Decimals return display metadata.
func (t *Token) Name() string      { return t.name }
func (t *Token) Symbol() string    { return t.symbol }
func (t *Token) Decimals() uint32  { return t.decimals }
func (t *Token) Address() common.AccountID { return t.self }
