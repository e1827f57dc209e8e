// Package route builds the multi-hop swap routes the Market's SwapWithdrawFrom and the
// Credit Agency's liquidation/repay-with-collateral flows need to move value from a
// collateral market's asset to a debt market's asset through the shared common_token
// (spec.md §4.3). It is adapted from the teacher's pkg/skip-go route types
// (RouteResponse / hop shape), trimmed down to the synchronous in-process AMM model
// this library uses instead of an off-chain route-finding service.
package route

// Hop is one leg of a swap route: sell one denom, receive another.
type Hop struct {
	Sell string
	Buy  string
}

// Route is an ordered sequence of hops, sell denom of hop[i+1] always equal to the buy
// denom of hop[i].
type Route struct {
	Hops []Hop
}

// Build constructs the route spec.md §4.3 describes for SwapWithdrawFrom: a single hop
// when either endpoint already is the common token, otherwise two hops through it.
func Build(sell, buy, commonToken string) Route {
	if sell == commonToken || buy == commonToken {
		return Route{Hops: []Hop{{Sell: sell, Buy: buy}}}
	}
	return Route{Hops: []Hop{{Sell: sell, Buy: commonToken}, {Sell: commonToken, Buy: buy}}}
}

// Reverse returns the hops in reverse order, each with Sell/Buy swapped — used to walk
// a route backwards when computing the input amount needed for a fixed output
// (estimate_swap_exact_out chained across hops).
func (r Route) Reverse() []Hop {
	out := make([]Hop, len(r.Hops))
	for i, h := range r.Hops {
		out[len(r.Hops)-1-i] = Hop{Sell: h.Buy, Buy: h.Sell}
	}
	return out
}
