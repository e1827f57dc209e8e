package creditagency

import (
	"sort"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// MarketInfo is the shape returned by the Market and ListMarkets queries (spec.md §6).
type MarketInfo struct {
	MarketToken string
	Address     common.AccountID
	Instantiating bool
}

func (a *CreditAgency) marketInfo(entry *marketEntry) MarketInfo {
	return MarketInfo{
		MarketToken:   entry.token,
		Address:       entry.addr,
		Instantiating: entry.state == stateInstantiating,
	}
}

// Configuration returns the Agency's current config (spec.md §6 "configuration" query).
func (a *CreditAgency) Configuration() Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Market looks up a single market by its underlying token denom.
func (a *CreditAgency) Market(marketToken string) (MarketInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.byToken[marketToken]
	if !ok {
		return MarketInfo{}, &common.NoMarket{Denom: marketToken}
	}
	return a.marketInfo(entry), nil
}

// ListMarkets paginates the registry ascending by market_token (spec.md §6: default
// limit 10, max 30, exclusive start_after cursor).
func (a *CreditAgency) ListMarkets(startAfter *string, limit *int) []MarketInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	tokens := make([]string, 0, len(a.byToken))
	for token := range a.byToken {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	n := common.ClampLimit(limit)
	out := make([]MarketInfo, 0, n)
	for _, token := range tokens {
		if startAfter != nil && token <= *startAfter {
			continue
		}
		if len(out) >= n {
			break
		}
		out = append(out, a.marketInfo(a.byToken[token]))
	}
	return out
}

// IsOnMarketQuery answers the is_on_market query by token rather than address, the shape
// spec.md §6 gives the query (IsOnMarket itself takes a resolved address).
func (a *CreditAgency) IsOnMarketQuery(account common.AccountID, marketToken string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.byToken[marketToken]
	if !ok {
		return false, &common.NoMarket{Denom: marketToken}
	}

	a.enteredMu.RLock()
	defer a.enteredMu.RUnlock()
	return a.entered[account][entry.addr], nil
}
