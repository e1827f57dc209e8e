package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
	"github.com/margined-protocol/isotonic-lend/pkg/route"
)

// checkpoints returns, for buy's route, the amount required at the input of each hop:
// checkpoints[0] is what must be sold at the first hop (market_token), ...,
// checkpoints[len] is buy itself. Computed by walking the route backwards, asking the
// oracle at each hop how much input it needs to produce the next checkpoint's amount
// (spec.md §4.3 SwapWithdrawFrom).
func (m *Market) checkpoints(buy common.Coin) ([]common.Coin, error) {
	r := route.Build(m.config.MarketToken, buy.Denom, m.config.CommonToken)
	points := make([]common.Coin, len(r.Hops)+1)
	points[len(points)-1] = buy

	want := buy
	for i := len(r.Hops) - 1; i >= 0; i-- {
		hop := r.Hops[i]
		needed, err := m.oracle.EstimateSwapExactOut(hop.Sell, want)
		if err != nil {
			return nil, err
		}
		want = common.NewCoin(hop.Sell, needed)
		points[i] = want
	}
	return points, nil
}

// quoteSwapRoute returns the market_token amount the caller must burn to receive buy
// through this market's swap route.
func (m *Market) quoteSwapRoute(buy common.Coin) (sdkmath.Int, error) {
	points, err := m.checkpoints(buy)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return points[0].Amount, nil
}

// executeSwapRoute swaps sellAmount of market_token into buy hop by hop. It recomputes
// the checkpoints with the same backward walk quoteSwapRoute uses and fails with
// IncorrectSwapAmountResponse if the first checkpoint no longer equals sellAmount.
func (m *Market) executeSwapRoute(sellAmount sdkmath.Int, buy common.Coin) error {
	points, err := m.checkpoints(buy)
	if err != nil {
		return err
	}
	if !points[0].Amount.Equal(sellAmount) {
		return &common.IncorrectSwapAmountResponse{Expected: sellAmount, Actual: points[0].Amount}
	}

	r := route.Build(m.config.MarketToken, buy.Denom, m.config.CommonToken)
	for i, hop := range r.Hops {
		sellLimit := points[i].Amount
		want := points[i+1]
		if _, err := m.oracle.Swap(hop.Sell, sellLimit, want); err != nil {
			return err
		}
	}
	return nil
}
