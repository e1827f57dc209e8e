package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/pyth"
)

// PythFeed adapts pkg/contracts/pyth into oracle.SecondaryFeed, resolving a denom to a
// Pyth price feed id through a caller-supplied registry (Pyth has no notion of chain
// denoms, only feed ids).
type PythFeed struct {
	client  pyth.QueryClient
	feedIDs map[string]string
	timeout time.Duration
}

// NewPythFeed constructs a PythFeed. feedIDs maps a chain denom (e.g. "uusdc") to the
// Pyth price feed id that quotes it in USD.
func NewPythFeed(client pyth.QueryClient, feedIDs map[string]string) *PythFeed {
	return &PythFeed{client: client, feedIDs: feedIDs, timeout: 5 * time.Second}
}

// Price implements oracle.SecondaryFeed by quoting both denoms against USD through Pyth
// and dividing, since Pyth feeds are always USD-denominated.
func (f *PythFeed) Price(sell, buy string) (float64, error) {
	sellPrice, err := f.usdPrice(sell)
	if err != nil {
		return 0, err
	}
	buyPrice, err := f.usdPrice(buy)
	if err != nil {
		return 0, err
	}
	if buyPrice == 0 {
		return 0, fmt.Errorf("pyth: zero price for denom %s", buy)
	}
	return sellPrice / buyPrice, nil
}

func (f *PythFeed) usdPrice(denom string) (float64, error) {
	feedID, ok := f.feedIDs[denom]
	if !ok {
		return 0, fmt.Errorf("pyth: no feed id registered for denom %s", denom)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	resp, err := f.client.LatestPrice(ctx, feedID)
	if err != nil {
		return 0, fmt.Errorf("pyth: fetch price for %s: %w", denom, err)
	}
	if len(resp.Parsed) == 0 {
		return 0, fmt.Errorf("pyth: empty response for %s", denom)
	}

	raw := resp.Parsed[0].Price
	scaled, err := pyth.ConvertPythPrice(raw.Price, raw.Exponent)
	if err != nil {
		return 0, fmt.Errorf("pyth: convert price for %s: %w", denom, err)
	}
	return float64(scaled.Int64()), nil
}
