package creditagency

import (
	"strconv"

	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// AdjustMarketID changes which code id future CreateMarket calls instantiate (spec.md
// §4.4 "Governance / sudo"). Existing markets are untouched.
func (a *CreditAgency) AdjustMarketID(caller common.AccountID, id uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireGov(caller); err != nil {
		return err
	}
	a.config.MarketCodeID = id
	a.recorder.Record("adjust_market_id", map[string]string{"market_code_id": strconv.FormatUint(id, 10)})
	return nil
}

// AdjustTokenID is AdjustMarketID's counterpart for the position-token code id.
func (a *CreditAgency) AdjustTokenID(caller common.AccountID, id uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireGov(caller); err != nil {
		return err
	}
	a.config.TokenCodeID = id
	a.recorder.Record("adjust_token_id", map[string]string{"token_code_id": strconv.FormatUint(id, 10)})
	return nil
}

// AdjustCommonToken updates the Agency's own common_token and fans the same change out
// to every Ready market, keeping TotalCreditLine's InvalidCommonTokenDenom check
// meaningful after the change (spec.md §4.4).
func (a *CreditAgency) AdjustCommonToken(caller common.AccountID, newToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireGov(caller); err != nil {
		return err
	}

	a.enteredMu.RLock()
	entries := make([]*marketEntry, 0, len(a.byAddr))
	for _, entry := range a.byAddr {
		entries = append(entries, entry)
	}
	a.enteredMu.RUnlock()

	for _, entry := range entries {
		if entry.state != stateReady {
			continue
		}
		if err := entry.view.AdjustCommonToken(newToken); err != nil {
			return err
		}
	}
	a.config.CommonToken = newToken
	a.recorder.Record("adjust_common_token", map[string]string{"new_token": newToken})
	return nil
}

// AdjustLiquidation partially updates the liquidation parameters; nil fields are left
// unchanged. Range validation reuses Config.Validate so sudo can never install an
// invalid combination a later call would have to fail on.
func (a *CreditAgency) AdjustLiquidation(caller common.AccountID, price, fee, initiationFee *sdkmath.LegacyDec) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireGov(caller); err != nil {
		return err
	}
	next := a.config
	if price != nil {
		next.LiquidationPrice = *price
	}
	if fee != nil {
		next.LiquidationFee = *fee
	}
	if initiationFee != nil {
		next.LiquidationInitiationFee = *initiationFee
	}
	if err := next.Validate(); err != nil {
		return err
	}
	a.config = next
	a.recorder.Record("adjust_liquidation", map[string]string{
		"liquidation_price":          a.config.LiquidationPrice.String(),
		"liquidation_fee":            a.config.LiquidationFee.String(),
		"liquidation_initiation_fee": a.config.LiquidationInitiationFee.String(),
	})
	return nil
}

// MigrateMarket is record-only: this library has no code-upgrade mechanism of its own,
// so it only validates the target is a known, Ready market and logs the request the way
// the host chain's migrate dispatch would be audited.
func (a *CreditAgency) MigrateMarket(caller common.AccountID, addr common.AccountID, migrateMsg []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireGov(caller); err != nil {
		return err
	}
	a.enteredMu.RLock()
	entry, ok := a.byAddr[addr]
	a.enteredMu.RUnlock()
	if !ok || entry.state != stateReady {
		return common.ErrMarketSearchError
	}
	a.recorder.Record("migrate_market", map[string]string{
		"market": string(addr), "migrate_msg_len": strconv.Itoa(len(migrateMsg)),
	})
	return nil
}
