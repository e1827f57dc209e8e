// Package oracle resolves a canonical pool id for an unordered asset pair and returns
// the current spot price from the AMM (spec.md §4.2).
package oracle

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// AMM is the external collaborator spec.md §1 names out of scope ("we only consume
// estimate_swap_exact_out and swap"); this library calls it synchronously in-process.
// Production code backs it with pkg/contracts/astroport; tests back it with MemoryAMM.
type AMM interface {
	// SpotPrice returns the price of one unit of sell denominated in buy, no swap fee,
	// for the pool identified by poolID.
	SpotPrice(poolID string, sell, buy string) (sdkmath.LegacyDec, error)
	// EstimateSwapExactOut returns the sell amount required to receive exactly
	// buy.Amount of buy.Denom from the pool, without executing the swap.
	EstimateSwapExactOut(poolID string, sell string, buy common.Coin) (sdkmath.Int, error)
	// Swap executes sell->buy.Denom through the pool, sending at most sellLimit of
	// sell and receiving exactly buy.Amount of buy.Denom, returning the amount of
	// sell actually spent.
	Swap(poolID string, sell string, sellLimit sdkmath.Int, buy common.Coin) (sdkmath.Int, error)
}

// pairKey is the ordered (denom_lo, denom_hi) registry key, spec.md §4.2.
type pairKey struct {
	lo, hi string
}

func sortedPair(a, b string) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// Oracle owns the pool registry and forwards price/swap queries to the AMM.
type Oracle struct {
	mu sync.RWMutex

	controller common.AccountID
	pools      map[pairKey]string

	amm AMM

	sanity *sanityFeed
	logger *zap.Logger
}

// Config seeds a new Oracle.
type Config struct {
	Controller common.AccountID
	AMM        AMM
	Logger     *zap.Logger
}

// New constructs an Oracle with an empty pool registry.
func New(cfg Config) *Oracle {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		controller: cfg.Controller,
		pools:      make(map[pairKey]string),
		amm:        cfg.AMM,
		logger:     logger,
	}
}

// RegisterPool records poolID for the sorted (denom1, denom2) pair, controller-only;
// silently overwrites an existing entry (spec.md §4.2).
func (o *Oracle) RegisterPool(caller common.AccountID, poolID, denom1, denom2 string) error {
	if caller != o.controller {
		return common.ErrUnauthorized
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pools[sortedPair(denom1, denom2)] = poolID
	o.logger.Debug("oracle pool registered", zap.String("pool_id", poolID), zap.String("denom1", denom1), zap.String("denom2", denom2))
	return nil
}

// PoolId returns the pool id registered for the sorted (denom1, denom2) pair.
func (o *Oracle) PoolId(denom1, denom2 string) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	id, ok := o.pools[sortedPair(denom1, denom2)]
	if !ok {
		return "", &common.NoMarket{Denom: denom1 + "/" + denom2}
	}
	return id, nil
}

// Price returns the spot price of sell quoted in buy, looking up the pool for the
// sorted pair and asking the AMM (spec.md §4.2).
func (o *Oracle) Price(sell, buy string) (sdkmath.LegacyDec, error) {
	if sell == buy {
		return sdkmath.LegacyOneDec(), nil
	}
	poolID, err := o.PoolId(sell, buy)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}

	price, err := o.amm.SpotPrice(poolID, sell, buy)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	if price.IsZero() {
		return sdkmath.LegacyDec{}, common.ErrZeroPrice
	}

	if o.sanity != nil {
		o.sanity.check(o.logger, sell, buy, price)
	}
	return price, nil
}

// EstimateSwapExactOut resolves the pool for sell/buy.Denom and delegates to the AMM.
func (o *Oracle) EstimateSwapExactOut(sell string, buy common.Coin) (sdkmath.Int, error) {
	poolID, err := o.PoolId(sell, buy.Denom)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return o.amm.EstimateSwapExactOut(poolID, sell, buy)
}

// Swap resolves the pool for sell/buy.Denom and delegates to the AMM.
func (o *Oracle) Swap(sell string, sellLimit sdkmath.Int, buy common.Coin) (sdkmath.Int, error) {
	poolID, err := o.PoolId(sell, buy.Denom)
	if err != nil {
		return sdkmath.Int{}, err
	}
	spent, err := o.amm.Swap(poolID, sell, sellLimit, buy)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if spent.GT(sellLimit) {
		return sdkmath.Int{}, &common.IncorrectSwapAmountResponse{Expected: sellLimit, Actual: spent}
	}
	return spent, nil
}
