package oracle

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	wasmdtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/astroport"
	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// constantRateQuerier simulates a pool with a fixed exchange rate: every offer of
// amount X returns rate*X, ignoring slippage so EstimateSwapExactOut's refine pass
// should match its single-probe estimate exactly.
type constantRateQuerier struct {
	rate sdkmath.LegacyDec
}

func (q *constantRateQuerier) QuerySimulation(_ context.Context, _, _, amount string, _ ...grpc.CallOption) (*astroport.SimulationResponse, error) {
	offer, _ := sdkmath.NewIntFromString(amount)
	ret := q.rate.MulInt(offer).TruncateInt()
	return &astroport.SimulationResponse{ReturnAmount: ret.String()}, nil
}

func (q *constantRateQuerier) QueryPool(_ context.Context, _ string, _ ...grpc.CallOption) (*astroport.PoolResponse, error) {
	return &astroport.PoolResponse{}, nil
}

func (q *constantRateQuerier) Close() error { return nil }

type fakeBroadcaster struct {
	spent sdkmath.Int
	err   error
}

func (b *fakeBroadcaster) Broadcast(context.Context, *wasmdtypes.MsgExecuteContract) (sdkmath.Int, error) {
	return b.spent, b.err
}

func TestAstroportSpotPrice(t *testing.T) {
	q := &constantRateQuerier{rate: sdkmath.LegacyNewDecWithPrec(5, 1)} // 0.5
	amm := NewAstroportAMM(q, nil, "sender", "")

	price, err := amm.SpotPrice("pool1", "uatom", "uusdc")
	require.NoError(t, err)
	require.True(t, price.Equal(sdkmath.LegacyNewDecWithPrec(5, 1)))
}

func TestAstroportEstimateSwapExactOutConstantRate(t *testing.T) {
	q := &constantRateQuerier{rate: sdkmath.LegacyNewDec(2)}
	amm := NewAstroportAMM(q, nil, "sender", "")

	sellAmount, err := amm.EstimateSwapExactOut("pool1", "uatom", common.NewCoin("uusdc", sdkmath.NewInt(2_000_000)))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(1_000_000), sellAmount)
}

func TestAstroportSwapSucceedsWithinSellLimit(t *testing.T) {
	q := &constantRateQuerier{rate: sdkmath.LegacyNewDec(1)}
	bc := &fakeBroadcaster{spent: sdkmath.NewInt(900)}
	amm := NewAstroportAMM(q, bc, "sender", "0.02")

	spent, err := amm.Swap("pool1", "uatom", sdkmath.NewInt(1_000), common.NewCoin("uusdc", sdkmath.NewInt(900)))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(900), spent)
}

func TestAstroportSwapRejectsOverLimitSpend(t *testing.T) {
	q := &constantRateQuerier{rate: sdkmath.LegacyNewDec(1)}
	bc := &fakeBroadcaster{spent: sdkmath.NewInt(1_100)}
	amm := NewAstroportAMM(q, bc, "sender", "")

	_, err := amm.Swap("pool1", "uatom", sdkmath.NewInt(1_000), common.NewCoin("uusdc", sdkmath.NewInt(900)))
	require.Error(t, err)
}
