package common

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Sentinel errors for the authorization, funds-validation, registry, and arithmetic
// kinds named in spec.md §7 — ambient/stateless checks that don't carry per-call data.
// These live alongside the struct kinds below rather than in pkg/errors because they
// are domain-specific to the lending protocol, not ambient to the whole repository.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRequiresCreditAgency = errors.New("caller must be the credit agency")
	ErrNoFundsSent         = errors.New("no funds sent")
	ErrMarketSearchError   = errors.New("market search error")
	ErrCw20NotSupported    = errors.New("cw20 tokens are not supported")
	ErrInvalidZeroAmount   = errors.New("amount must be non-zero")
	ErrNoHoldersToDistribute = errors.New("no holders to distribute funds to")
	ErrZeroPrice           = errors.New("oracle returned a zero price")
	ErrZeroCollateralRatio = errors.New("collateral ratio is zero")
	ErrLiquidationNotAllowed = errors.New("account is not eligible for liquidation")
	ErrRepayingLoanUsingCollateralFailed = errors.New("repay with collateral would leave the account insolvent")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// ExtraDenoms is returned when funds carry more than the single expected denom.
type ExtraDenoms struct {
	Expected string
}

func (e *ExtraDenoms) Error() string {
	return fmt.Sprintf("extra denoms sent, expected only %q", e.Expected)
}

// InvalidDenom is returned when the single coin sent does not match the expected denom.
type InvalidDenom struct {
	Expected string
	Actual   string
}

func (e *InvalidDenom) Error() string {
	return fmt.Sprintf("invalid denom %q, expected %q", e.Actual, e.Expected)
}

// NoMarket is returned by registry lookups for a denom with no registered market.
type NoMarket struct {
	Denom string
}

func (e *NoMarket) Error() string {
	return fmt.Sprintf("no market for denom %q", e.Denom)
}

// MarketCreating is returned when a market lookup hits an Instantiating entry.
type MarketCreating struct {
	Denom string
}

func (e *MarketCreating) Error() string {
	return fmt.Sprintf("market for denom %q is still instantiating", e.Denom)
}

// MarketAlreadyExists is returned by CreateMarket when the denom is already registered.
type MarketAlreadyExists struct {
	Denom string
}

func (e *MarketAlreadyExists) Error() string {
	return fmt.Sprintf("market for denom %q already exists", e.Denom)
}

// MarketCfgCollateralFailure is returned when collateral_ratio >= liquidation_price.
type MarketCfgCollateralFailure struct {
	CollateralRatio  sdkmath.LegacyDec
	LiquidationPrice sdkmath.LegacyDec
}

func (e *MarketCfgCollateralFailure) Error() string {
	return fmt.Sprintf("collateral_ratio %s must be strictly less than liquidation_price %s",
		e.CollateralRatio, e.LiquidationPrice)
}

// UnrecognisedReply is returned when a reply handler sees an id it never allocated.
type UnrecognisedReply struct {
	ID uint64
}

func (e *UnrecognisedReply) Error() string {
	return fmt.Sprintf("unrecognised reply id %d", e.ID)
}

// ReplyParseFailure wraps a failure to parse a child-instantiation reply payload.
type ReplyParseFailure struct {
	ID  uint64
	Err error
}

func (e *ReplyParseFailure) Error() string {
	return fmt.Sprintf("failed to parse reply %d: %v", e.ID, e.Err)
}

func (e *ReplyParseFailure) Unwrap() error { return e.Err }

// InsufficientTokens is returned by Position Token BurnFrom/Transfer checks.
type InsufficientTokens struct {
	Available sdkmath.Int
	Needed    sdkmath.Int
}

func (e *InsufficientTokens) Error() string {
	return fmt.Sprintf("insufficient tokens: have %s, need %s", e.Available, e.Needed)
}

// CannotTransfer is returned when a transfer exceeds the controller's transferable cap.
type CannotTransfer struct {
	MaxTransferable sdkmath.Int
}

func (e *CannotTransfer) Error() string {
	return fmt.Sprintf("cannot transfer: max transferable is %s", e.MaxTransferable)
}

// CannotBorrow is returned when a borrow exceeds the account's borrow limit.
type CannotBorrow struct {
	Amount  sdkmath.Int
	Account AccountID
}

func (e *CannotBorrow) Error() string {
	return fmt.Sprintf("account %s cannot borrow %s", e.Account, e.Amount)
}

// CannotWithdraw is returned when a withdrawal exceeds the account's transferable L-balance.
type CannotWithdraw struct {
	Account AccountID
	Amount  sdkmath.Int
}

func (e *CannotWithdraw) Error() string {
	return fmt.Sprintf("account %s cannot withdraw %s", e.Account, e.Amount)
}

// DepositOverCap is returned when a deposit would push L-token supply over market_cap.
type DepositOverCap struct {
	AttemptedDeposit sdkmath.Int
	LTokenSupply     sdkmath.Int
	Cap              sdkmath.Int
}

func (e *DepositOverCap) Error() string {
	return fmt.Sprintf("deposit of %s would push l-token supply %s over cap %s",
		e.AttemptedDeposit, e.LTokenSupply, e.Cap)
}

// UnrecognisedToken is returned when a caller that claims to be the L/B token does not
// match the market's recorded token addresses.
type UnrecognisedToken struct {
	Addr AccountID
}

func (e *UnrecognisedToken) Error() string {
	return fmt.Sprintf("unrecognised token address %s", e.Addr)
}

// IncorrectSwapAmountResponse is returned when the AMM's swap output does not match
// what EstimateSwapExactOut promised.
type IncorrectSwapAmountResponse struct {
	Expected sdkmath.Int
	Actual   sdkmath.Int
}

func (e *IncorrectSwapAmountResponse) Error() string {
	return fmt.Sprintf("swap produced %s, expected %s", e.Actual, e.Expected)
}

// InsufficientReserve is raised by Market.Sudo.WithdrawReserve (see SPEC_FULL.md §4).
type InsufficientReserve struct {
	Available sdkmath.Int
	Requested sdkmath.Int
}

func (e *InsufficientReserve) Error() string {
	return fmt.Sprintf("insufficient reserve: have %s, requested %s", e.Available, e.Requested)
}

// LiquidationInsufficientBTokens is returned by RepayTo when funds exceed the account's debt.
type LiquidationInsufficientBTokens struct {
	Debt   sdkmath.Int
	Amount sdkmath.Int
}

func (e *LiquidationInsufficientBTokens) Error() string {
	return fmt.Sprintf("repay amount %s exceeds debt %s", e.Amount, e.Debt)
}

// NotOnMarket is returned when an account referenced in a cross-market op never entered the market.
type NotOnMarket struct {
	Address AccountID
	Market  string
}

func (e *NotOnMarket) Error() string {
	return fmt.Sprintf("account %s is not on market %s", e.Address, e.Market)
}

// DebtOnMarket is returned by ExitMarket when the account still owes debt there.
type DebtOnMarket struct {
	Address AccountID
	Market  string
	Debt    Coin
}

func (e *DebtOnMarket) Error() string {
	return fmt.Sprintf("account %s has debt %s%s on market %s", e.Address, e.Debt.Amount, e.Debt.Denom, e.Market)
}

// NotEnoughCollat is returned by ExitMarket when removal would leave the account insolvent.
type NotEnoughCollat struct {
	Debt       sdkmath.LegacyDec
	CreditLine sdkmath.LegacyDec
	Collateral sdkmath.LegacyDec
}

func (e *NotEnoughCollat) Error() string {
	return fmt.Sprintf("debt %s exceeds credit line %s (collateral %s)", e.Debt, e.CreditLine, e.Collateral)
}

// LiquidationUndercollateralized is returned when a simulated liquidation would not
// restore the account's solvency at all (sell_limit collapses to zero or negative).
type LiquidationUndercollateralized struct {
	Account AccountID
}

func (e *LiquidationUndercollateralized) Error() string {
	return fmt.Sprintf("account %s is too undercollateralized to liquidate profitably", e.Account)
}

// InvalidCommonTokenDenom is returned when a market's common_token disagrees with the
// Agency's configured common_token during credit-line aggregation.
type InvalidCommonTokenDenom struct {
	Expected string
	Actual   string
}

func (e *InvalidCommonTokenDenom) Error() string {
	return fmt.Sprintf("market common_token %q does not match agency common_token %q", e.Actual, e.Expected)
}
