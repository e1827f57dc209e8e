package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// Config is the Market's persistent configuration (spec.md §3 "Market Config").
type Config struct {
	MarketToken  string
	CommonToken  string
	Curve        InterestRateModel
	ChargePeriod int64 // interest_charge_period, seconds

	CollateralRatio sdkmath.LegacyDec
	ReserveFactor   sdkmath.LegacyDec
	MarketCap       *sdkmath.Int // nil means uncapped

	PriceOracle  common.AccountID
	CreditAgency common.AccountID
}

// Validate enforces the config-time constraints spec.md §3/§8 name: collateral_ratio
// in [0,1), reserve_factor in [0,1], a valid curve.
func (c Config) Validate() error {
	one := sdkmath.LegacyOneDec()
	if c.CollateralRatio.IsNegative() || c.CollateralRatio.GTE(one) {
		return common.ErrZeroCollateralRatio
	}
	if c.ReserveFactor.IsNegative() || c.ReserveFactor.GT(one) {
		return common.ErrInvalidConfig
	}
	if c.ChargePeriod <= 0 {
		return common.ErrInvalidConfig
	}
	return c.Curve.Validate()
}
