package oracle

import (
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	ourmath "github.com/margined-protocol/isotonic-lend/pkg/math"
)

// SecondaryFeed is a cross-check price source (pkg/contracts/pyth, adapted) the Oracle
// can consult to flag AMM spot prices that drift too far from an independent feed —
// this is pure observability, it never blocks a Price() call (see SPEC_FULL.md §3).
type SecondaryFeed interface {
	// Price returns the secondary feed's price for sell quoted in buy, or an error if
	// the pair isn't covered.
	Price(sell, buy string) (float64, error)
}

type sanityFeed struct {
	feed          SecondaryFeed
	thresholdBps  int64
}

// WithSanityFeed attaches a secondary price feed used only to log a warning when it
// disagrees with the AMM spot price by more than thresholdBps basis points.
func (o *Oracle) WithSanityFeed(feed SecondaryFeed, thresholdBps int64) *Oracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sanity = &sanityFeed{feed: feed, thresholdBps: thresholdBps}
	return o
}

func (s *sanityFeed) check(logger *zap.Logger, sell, buy string, ammPrice sdkmath.LegacyDec) {
	secondary, err := s.feed.Price(sell, buy)
	if err != nil {
		return
	}
	ammFloat, err := ammPrice.Float64()
	if err != nil {
		return
	}
	change, significant := ourmath.ComparePercentageChange(secondary, ammFloat, s.thresholdBps)
	if significant {
		logger.Warn("oracle spot price deviates from secondary feed",
			zap.String("sell", sell), zap.String("buy", buy),
			zap.Float64("amm_price", ammFloat), zap.Float64("secondary_price", secondary),
			zap.Float64("percentage_change", change))
	}
}
