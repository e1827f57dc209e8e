package market

import (
	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// The structs below are the JSON wire shapes for Market's execute/query surface
// (spec.md §6). Any transport layered on top of this in-process library is a thin
// encoding of these same Go types (SPEC_FULL.md §6).

// ExecuteDeposit is the "deposit" execute message.
type ExecuteDeposit struct{}

// ExecuteDepositTo is the "deposit_to" execute message.
type ExecuteDepositTo struct {
	Account common.AccountID `json:"account"`
}

// ExecuteWithdraw is the "withdraw" execute message.
type ExecuteWithdraw struct {
	Amount sdkmath.Int `json:"amount"`
}

// ExecuteBorrow is the "borrow" execute message.
type ExecuteBorrow struct {
	Amount sdkmath.Int `json:"amount"`
}

// ExecuteRepay is the "repay" execute message.
type ExecuteRepay struct{}

// ExecuteRepayTo is the "repay_to" execute message (agency-only).
type ExecuteRepayTo struct {
	Account common.AccountID `json:"account"`
	Amount  sdkmath.Int      `json:"amount"`
}

// ExecuteAdjustCommonToken is the "adjust_common_token" execute message (agency-only).
type ExecuteAdjustCommonToken struct {
	NewToken string `json:"new_token"`
}

// ExecuteSwapWithdrawFrom is the "swap_withdraw_from" execute message (agency-only).
type ExecuteSwapWithdrawFrom struct {
	Account   common.AccountID `json:"account"`
	SellLimit sdkmath.Int      `json:"sell_limit"`
	Buy       common.Coin      `json:"buy"`
}

// ExecuteDistributeAsLTokens is the "distribute_as_ltokens" execute message (agency-only).
type ExecuteDistributeAsLTokens struct{}

// QueryTokensBalance is the "tokens_balance" query message.
type QueryTokensBalance struct {
	Account common.AccountID `json:"account"`
}

// QueryTransferableAmount is the "transferable_amount" query message.
type QueryTransferableAmount struct {
	Token   common.AccountID `json:"token"`
	Account common.AccountID `json:"account"`
}

// QueryWithdrawable is the "withdrawable" query message.
type QueryWithdrawable struct {
	Account common.AccountID `json:"account"`
}

// QueryBorrowable is the "borrowable" query message.
type QueryBorrowable struct {
	Account common.AccountID `json:"account"`
}

// QueryCreditLine is the "credit_line" query message.
type QueryCreditLine struct {
	Account common.AccountID `json:"account"`
}
