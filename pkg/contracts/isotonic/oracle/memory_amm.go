package oracle

import (
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// MemoryAMM is a deterministic constant-product AMM used by the test suites in place
// of a real Astroport-style venue (SPEC_FULL.md §1: "a deterministic in-memory AMM used
// by the test suites"). Each pool holds two reserves; SpotPrice and
// EstimateSwapExactOut are read-only, Swap mutates the reserves.
type MemoryAMM struct {
	mu    sync.Mutex
	pools map[string]*memoryPool
}

type memoryPool struct {
	denomA, denomB string
	reserveA, reserveB sdkmath.LegacyDec
}

// NewMemoryAMM constructs an AMM with no pools; use SeedPool to add one.
func NewMemoryAMM() *MemoryAMM {
	return &MemoryAMM{pools: make(map[string]*memoryPool)}
}

// SeedPool creates or replaces a pool keyed by poolID with the given reserves,
// establishing spot price reserveB/reserveA for denomA->denomB.
func (m *MemoryAMM) SeedPool(poolID, denomA, denomB string, reserveA, reserveB sdkmath.LegacyDec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[poolID] = &memoryPool{denomA: denomA, denomB: denomB, reserveA: reserveA, reserveB: reserveB}
}

func (p *memoryPool) reservesFor(sell, buy string) (sell_r, buy_r sdkmath.LegacyDec, ok bool) {
	switch {
	case p.denomA == sell && p.denomB == buy:
		return p.reserveA, p.reserveB, true
	case p.denomB == sell && p.denomA == buy:
		return p.reserveB, p.reserveA, true
	default:
		return sdkmath.LegacyDec{}, sdkmath.LegacyDec{}, false
	}
}

// SpotPrice returns reserve(buy)/reserve(sell), the constant-product spot price with
// no swap fee.
func (m *MemoryAMM) SpotPrice(poolID string, sell, buy string) (sdkmath.LegacyDec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[poolID]
	if !ok {
		return sdkmath.LegacyDec{}, &common.NoMarket{Denom: poolID}
	}
	sellR, buyR, ok := pool.reservesFor(sell, buy)
	if !ok {
		return sdkmath.LegacyDec{}, &common.InvalidDenom{Expected: pool.denomA + "/" + pool.denomB, Actual: sell + "/" + buy}
	}
	return buyR.Quo(sellR), nil
}

// EstimateSwapExactOut returns the sell amount needed to withdraw exactly buy.Amount
// under the constant-product invariant: dx = x*dy / (y - dy).
func (m *MemoryAMM) EstimateSwapExactOut(poolID string, sell string, buy common.Coin) (sdkmath.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[poolID]
	if !ok {
		return sdkmath.Int{}, &common.NoMarket{Denom: poolID}
	}
	sellR, buyR, ok := pool.reservesFor(sell, buy.Denom)
	if !ok {
		return sdkmath.Int{}, &common.InvalidDenom{Expected: pool.denomA + "/" + pool.denomB, Actual: sell + "/" + buy.Denom}
	}
	dy := common.DecFromInt(buy.Amount)
	if dy.GTE(buyR) {
		return sdkmath.Int{}, common.ErrZeroPrice
	}
	dx := sellR.Mul(dy).Quo(buyR.Sub(dy))
	return dx.Ceil().TruncateInt(), nil
}

// Swap executes sell->buy.Denom, requiring the computed input not exceed sellLimit,
// and mutates the pool's reserves accordingly.
func (m *MemoryAMM) Swap(poolID string, sell string, sellLimit sdkmath.Int, buy common.Coin) (sdkmath.Int, error) {
	spent, err := m.EstimateSwapExactOut(poolID, sell, buy)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if spent.GT(sellLimit) {
		return sdkmath.Int{}, &common.IncorrectSwapAmountResponse{Expected: sellLimit, Actual: spent}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	pool := m.pools[poolID]
	if pool.denomA == sell {
		pool.reserveA = pool.reserveA.Add(common.DecFromInt(spent))
		pool.reserveB = pool.reserveB.Sub(common.DecFromInt(buy.Amount))
	} else {
		pool.reserveB = pool.reserveB.Add(common.DecFromInt(spent))
		pool.reserveA = pool.reserveA.Sub(common.DecFromInt(buy.Amount))
	}
	return spent, nil
}
