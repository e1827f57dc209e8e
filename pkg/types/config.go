package types

import (
	"time"

	"github.com/margined-protocol/isotonic-lend/pkg/db"
)

// Config seeds a fresh protocol deployment: the credit agency's governance parameters,
// the initial set of markets, and the oracle's pool registry (SPEC_FULL.md §2, the
// ambient config loader). Adapted from the teacher's multi-strategy Config: this
// library seeds one lending protocol rather than a basket of independent trading
// strategies, so the strategy/chain-client fields the teacher config carried are
// replaced with the protocol's own seed data.
type Config struct {
	DB            db.Config        `toml:"db" mapstructure:"db"`
	Agency        AgencySeed       `toml:"agency" mapstructure:"agency"`
	Markets       []MarketSeed     `toml:"market" mapstructure:"market"`
	OraclePools   []OraclePoolSeed `toml:"oracle_pool" mapstructure:"oracle_pool"`
	SweepInterval time.Duration    `toml:"sweep_interval_ms" mapstructure:"sweep_interval_ms"`
}

// AgencySeed mirrors creditagency.Config's wire shape for TOML seeding.
type AgencySeed struct {
	GovAddress               string `toml:"gov_address" mapstructure:"gov_address"`
	CommonToken              string `toml:"common_token" mapstructure:"common_token"`
	LiquidationPrice         string `toml:"liquidation_price" mapstructure:"liquidation_price"`
	LiquidationFee           string `toml:"liquidation_fee" mapstructure:"liquidation_fee"`
	LiquidationInitiationFee string `toml:"liquidation_initiation_fee" mapstructure:"liquidation_initiation_fee"`
	MarketCodeID             uint64 `toml:"market_code_id" mapstructure:"market_code_id"`
	TokenCodeID              uint64 `toml:"token_code_id" mapstructure:"token_code_id"`
}

// MarketSeed describes one market.Config to instantiate at startup.
type MarketSeed struct {
	MarketToken     string  `toml:"market_token" mapstructure:"market_token"`
	ChargePeriod    int64   `toml:"charge_period_seconds" mapstructure:"charge_period_seconds"`
	CollateralRatio string  `toml:"collateral_ratio" mapstructure:"collateral_ratio"`
	ReserveFactor   string  `toml:"reserve_factor" mapstructure:"reserve_factor"`
	MarketCap       *SdkInt `toml:"market_cap" mapstructure:"market_cap"`
}

// OraclePoolSeed registers one AMM pool for a denom pair at startup.
type OraclePoolSeed struct {
	PoolID string `toml:"pool_id" mapstructure:"pool_id"`
	Denom1 string `toml:"denom1" mapstructure:"denom1"`
	Denom2 string `toml:"denom2" mapstructure:"denom2"`
}
