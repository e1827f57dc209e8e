// Package common holds the types shared across the Position Token, Oracle, Market, and
// Credit Agency components: coins, account identifiers, decimal helpers, and the two
// narrow interfaces (MarketView, AgencyView) each side of the Market<->Agency relationship
// is programmed against, so the market package never imports the credit agency.
package common

import (
	sdkmath "cosmossdk.io/math"
)

// Coin is a single denom/amount pair, the same shape the position-token and market
// operations pass around as "funds".
type Coin struct {
	Denom  string      `json:"denom"`
	Amount sdkmath.Int `json:"amount"`
}

// NewCoin builds a Coin, matching the constructor idiom used throughout pkg/contracts/mars.
func NewCoin(denom string, amount sdkmath.Int) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// IsZero reports whether the coin's amount is zero.
func (c Coin) IsZero() bool {
	return c.Amount.IsNil() || c.Amount.IsZero()
}

// AccountID is a bech32-shaped or otherwise opaque address string; this library never
// validates chain-specific address formats, it only compares and orders them.
type AccountID string

// CreditLine is the result shape of Market.CreditLine and CreditAgency.TotalCreditLine:
// collateral and debt quoted in the common token, and the derived borrowing limit.
type CreditLine struct {
	Collateral sdkmath.LegacyDec
	CreditLine sdkmath.LegacyDec
	Debt       sdkmath.LegacyDec
}

// Add combines two CreditLine aggregates componentwise, used by TotalCreditLine's
// fold over an account's entered markets.
func (c CreditLine) Add(other CreditLine) CreditLine {
	return CreditLine{
		Collateral: c.Collateral.Add(other.Collateral),
		CreditLine: c.CreditLine.Add(other.CreditLine),
		Debt:       c.Debt.Add(other.Debt),
	}
}

// ZeroCreditLine is the identity element for CreditLine.Add.
func ZeroCreditLine() CreditLine {
	zero := sdkmath.LegacyZeroDec()
	return CreditLine{Collateral: zero, CreditLine: zero, Debt: zero}
}

// TokenBalances is the {l, b} pair returned by Market.TokensBalance.
type TokenBalances struct {
	L sdkmath.Int
	B sdkmath.Int
}

// Apy is the {borrower, lender} pair returned by Market.Apy.
type Apy struct {
	Borrower sdkmath.LegacyDec
	Lender   sdkmath.LegacyDec
}

// InterestResponse is the {interest, utilisation, charge_period} triple returned by
// Market's "interest" query.
type InterestResponse struct {
	Interest     sdkmath.LegacyDec
	Utilisation  sdkmath.LegacyDec
	ChargePeriod int64
}

// MarketView is the slice of Market behaviour the Credit Agency depends on. A
// *market.Market is adapted to it by its AsMarketView method (its own DepositTo,
// SwapWithdrawFrom, RepayTo and DistributeAsLTokens take an extra caller argument).
type MarketView interface {
	Address() AccountID
	MarketToken() string
	CommonToken() string
	CollateralRatio() sdkmath.LegacyDec
	CreditLine(account AccountID) (CreditLine, error)
	DepositTo(account AccountID, funds Coin) error
	SwapWithdrawFrom(account AccountID, sellLimit sdkmath.Int, buy Coin) (Coin, error)
	RepayTo(account AccountID, amount sdkmath.Int, funds Coin) error
	DistributeAsLTokens(funds Coin) error
	AdjustCommonToken(newToken string) error
}

// AgencyView is the slice of Credit Agency behaviour Markets depend on. A concrete
// *creditagency.CreditAgency satisfies this structurally; the market package never
// imports creditagency.
type AgencyView interface {
	EnterMarket(market AccountID, account AccountID) error
	TotalCreditLine(account AccountID) (CreditLine, error)
}

// Pagination mirrors the Credit Agency's list_markets / list_entered_markets cursor
// semantics: ascending, exclusive on start_after, default 10, max 30.
const (
	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 30
)

// ClampLimit applies the default/max clamp spec.md §6 requires of every paginated query.
func ClampLimit(limit *int) int {
	if limit == nil {
		return DefaultPaginationLimit
	}
	if *limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	if *limit <= 0 {
		return DefaultPaginationLimit
	}
	return *limit
}
