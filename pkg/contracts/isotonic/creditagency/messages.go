package creditagency

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// Wire-shape structs for the Credit Agency's execute/query/sudo surface (spec.md §6),
// adapted from the teacher's message-struct-per-variant JSON convention.

type ExecuteCreateMarket struct {
	MarketToken        string            `json:"market_token"`
	CollateralRatio    sdkmath.LegacyDec `json:"collateral_ratio"`
	MarketCap          *sdkmath.Int      `json:"market_cap,omitempty"`
	InterestRateBase   sdkmath.LegacyDec `json:"interest_rate_base"`
	InterestRateMax    sdkmath.LegacyDec `json:"interest_rate_max"`
	OptimalUtilisation sdkmath.LegacyDec `json:"optimal_utilisation"`
	ReserveFactor      sdkmath.LegacyDec `json:"reserve_factor"`
}

type ExecuteEnterMarket struct {
	Account common.AccountID `json:"account"`
}

type ExecuteExitMarket struct {
	Market common.AccountID `json:"market"`
}

type ExecuteLiquidate struct {
	Account         common.AccountID `json:"account"`
	CollateralDenom string           `json:"collateral_denom"`
	AmountToRepay   common.Coin      `json:"amount_to_repay"`
}

type ExecuteRepayWithCollateral struct {
	MaxCollateral common.Coin `json:"max_collateral"`
	AmountToRepay common.Coin `json:"amount_to_repay"`
}

type QueryConfiguration struct{}

type QueryMarket struct {
	MarketToken string `json:"market_token"`
}

type QueryListMarkets struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *int    `json:"limit,omitempty"`
}

type QueryTotalCreditLine struct {
	Account common.AccountID `json:"account"`
}

type QueryListEnteredMarkets struct {
	Account    common.AccountID  `json:"account"`
	StartAfter *common.AccountID `json:"start_after,omitempty"`
	Limit      *int              `json:"limit,omitempty"`
}

type QueryIsOnMarket struct {
	Account common.AccountID `json:"account"`
	Market  string           `json:"market"`
}

type SudoAdjustMarketID struct {
	NewMarketID uint64 `json:"new_market_id"`
}

type SudoAdjustTokenID struct {
	NewTokenID uint64 `json:"new_token_id"`
}

type SudoAdjustCommonToken struct {
	NewToken string `json:"new_token"`
}

type SudoMigrateMarket struct {
	Contract   common.AccountID `json:"contract"`
	MigrateMsg []byte           `json:"migrate_msg"`
}

type SudoAdjustLiquidation struct {
	LiquidationPrice         *sdkmath.LegacyDec `json:"liquidation_price,omitempty"`
	LiquidationFee           *sdkmath.LegacyDec `json:"liquidation_fee,omitempty"`
	LiquidationInitiationFee *sdkmath.LegacyDec `json:"liquidation_initiation_fee,omitempty"`
}
