package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	sdkmath "cosmossdk.io/math"

	wasmdtypes "github.com/CosmWasm/wasmd/x/wasm/types"

	ourbackoff "github.com/margined-protocol/isotonic-lend/pkg/backoff"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/astroport"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// probeAmount is the reference offer used to read an implied price off an Astroport
// pair, the same returnAmount/offerAmount idiom the astroport package's liquidity
// probes use, without an unbounded search.
var probeAmount = sdkmath.NewInt(1_000_000)

// backoffTimeout bounds a single read-side query against the pair contract.
const backoffTimeout = 5 * time.Second

// Broadcaster submits a built MsgExecuteContract to the chain and reports the amount of
// the offered denom actually spent. The AMM adapter has no transaction signer of its
// own (spec.md §1 puts chain submission out of scope); production wiring supplies a
// Broadcaster backed by a real signing client, tests supply a fake.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *wasmdtypes.MsgExecuteContract) (sdkmath.Int, error)
}

// AstroportAMM adapts pkg/contracts/astroport into oracle.AMM: poolID is the Astroport
// pair contract address, QuerySimulation/QueryPool back the read side and
// CreateAstroportSwapMsg backs the write side.
type AstroportAMM struct {
	client      astroport.QueryClient
	broadcaster Broadcaster
	sender      string
	maxSpread   string
}

// NewAstroportAMM constructs an AstroportAMM. sender is the chain address the swap
// messages are executed from; maxSpread is the slippage tolerance astroport enforces
// on top of this library's own sellLimit check (empty string lets the pair default).
func NewAstroportAMM(client astroport.QueryClient, broadcaster Broadcaster, sender, maxSpread string) *AstroportAMM {
	return &AstroportAMM{client: client, broadcaster: broadcaster, sender: sender, maxSpread: maxSpread}
}

// SpotPrice probes the pair with probeAmount of sell and returns the implied buy-per-sell
// rate, the same returnAmount/offerAmount the pack's other astroport helpers compute.
func (a *AstroportAMM) SpotPrice(poolID string, sell, buy string) (sdkmath.LegacyDec, error) {
	_ = buy // the pair is fixed by poolID; buy is only used by callers to resolve poolID
	ctx, cancel := context.WithTimeout(context.Background(), backoffTimeout)
	defer cancel()

	sim, err := a.client.QuerySimulation(ctx, poolID, sell, probeAmount.String())
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("astroport: query simulation: %w", err)
	}
	returned, ok := sdkmath.NewIntFromString(sim.ReturnAmount)
	if !ok {
		return sdkmath.LegacyDec{}, fmt.Errorf("astroport: invalid return_amount %q", sim.ReturnAmount)
	}
	if returned.IsZero() {
		return sdkmath.LegacyDec{}, common.ErrZeroPrice
	}
	return sdkmath.LegacyNewDecFromInt(returned).Quo(sdkmath.LegacyNewDecFromInt(probeAmount)), nil
}

// EstimateSwapExactOut estimates the sell amount needed for exactly buy.Amount out: a
// first probe establishes the marginal rate, a second probe at the estimated amount
// corrects for the slippage the first probe's linear extrapolation missed.
func (a *AstroportAMM) EstimateSwapExactOut(poolID string, sell string, buy common.Coin) (sdkmath.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), backoffTimeout)
	defer cancel()

	probeSim, err := a.client.QuerySimulation(ctx, poolID, sell, probeAmount.String())
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("astroport: query simulation: %w", err)
	}
	probeReturn, ok := sdkmath.NewIntFromString(probeSim.ReturnAmount)
	if !ok || probeReturn.IsZero() {
		return sdkmath.Int{}, fmt.Errorf("astroport: invalid return_amount %q", probeSim.ReturnAmount)
	}

	estimate := buy.Amount.Mul(probeAmount).Quo(probeReturn)
	if estimate.IsZero() {
		estimate = sdkmath.OneInt()
	}

	refineSim, err := a.client.QuerySimulation(ctx, poolID, sell, estimate.String())
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("astroport: query simulation: %w", err)
	}
	refineReturn, ok := sdkmath.NewIntFromString(refineSim.ReturnAmount)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("astroport: invalid return_amount %q", refineSim.ReturnAmount)
	}
	if refineReturn.GTE(buy.Amount) {
		return estimate, nil
	}

	shortfall := buy.Amount.Sub(refineReturn)
	adjustment := shortfall.Mul(probeAmount).Quo(probeReturn)
	return estimate.Add(adjustment), nil
}

// Swap builds and submits the Astroport swap message, retrying the broadcast with
// pkg/backoff's exponential policy.
func (a *AstroportAMM) Swap(poolID string, sell string, sellLimit sdkmath.Int, buy common.Coin) (sdkmath.Int, error) {
	msg, err := astroport.CreateAstroportSwapMsg(a.sender, poolID, sell, "", a.maxSpread, sellLimit)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("astroport: build swap message: %w", err)
	}

	ctx := context.Background()
	var spent sdkmath.Int
	retryable := func() error {
		spent, err = a.broadcaster.Broadcast(ctx, msg)
		return err
	}
	if err := backoff.Retry(retryable, ourbackoff.NewBackoff(ctx)); err != nil {
		return sdkmath.Int{}, fmt.Errorf("astroport: broadcast swap: %w", err)
	}
	if spent.GT(sellLimit) {
		return sdkmath.Int{}, &common.IncorrectSwapAmountResponse{Expected: sellLimit, Actual: spent}
	}
	return spent, nil
}
