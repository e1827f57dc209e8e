// Package creditagency implements the cross-market coordinator (spec.md §4.4): it owns
// the market registry and its Instantiating→Ready reply-id state machine, tracks
// per-account market membership, aggregates credit lines across markets, and drives
// liquidation and repay-with-collateral.
package creditagency

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// Config is the Credit Agency's persistent configuration (spec.md §3 "Credit Agency Config").
type Config struct {
	GovAddress common.AccountID

	// MarketCodeID and TokenCodeID select which child contract version future
	// CreateMarket calls instantiate; adjusting them never touches existing markets.
	MarketCodeID uint64
	TokenCodeID  uint64

	RewardToken string
	CommonToken string

	LiquidationPrice         sdkmath.LegacyDec // (0, 1]
	LiquidationFee           sdkmath.LegacyDec // [0, 1)
	LiquidationInitiationFee sdkmath.LegacyDec // [0, 1)
}

// Validate enforces the config-time constraints spec.md §3 names for the Agency.
func (c Config) Validate() error {
	zero := sdkmath.LegacyZeroDec()
	one := sdkmath.LegacyOneDec()
	if c.LiquidationPrice.LTE(zero) || c.LiquidationPrice.GT(one) {
		return common.ErrInvalidConfig
	}
	if c.LiquidationFee.IsNegative() || c.LiquidationFee.GTE(one) {
		return common.ErrInvalidConfig
	}
	if c.LiquidationInitiationFee.IsNegative() || c.LiquidationInitiationFee.GTE(one) {
		return common.ErrInvalidConfig
	}
	return nil
}
