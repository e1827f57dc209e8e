package token

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// pointsShift is the ABI-fixed fixed-point scale for the reward ledger (spec.md §4.1,
// §6: "POINTS_SHIFT = 32"). It must never change between versions.
const pointsShift = 32

// rewardLedger is the ERC-2222-style pro-rata distribution ledger kept per Token.
type rewardLedger struct {
	pointsPerToken  *big.Int // scaled by 2^pointsShift
	pointsLeftover  sdkmath.Int
	distributedTotal sdkmath.Int
	withdrawableTotal sdkmath.Int

	pointsCorrection map[common.AccountID]*big.Int
	withdrawn        map[common.AccountID]sdkmath.Int
}

func newRewardLedger() rewardLedger {
	return rewardLedger{
		pointsPerToken:    big.NewInt(0),
		pointsLeftover:    sdkmath.ZeroInt(),
		distributedTotal:  sdkmath.ZeroInt(),
		withdrawableTotal: sdkmath.ZeroInt(),
		pointsCorrection:  make(map[common.AccountID]*big.Int),
		withdrawn:         make(map[common.AccountID]sdkmath.Int),
	}
}

// onBalanceChange adjusts account's points_correction by the law in spec.md §4.1:
// "adjust points_correction[a] by ±Δstored × points_per_token so that entitlement(a)
// ... remains the account's correct cumulative entitlement." increase reports whether
// stored is being added (mint/transfer-in) or removed (burn/transfer-out).
func (r *rewardLedger) onBalanceChange(account common.AccountID, stored sdkmath.Int, increase bool) {
	if stored.IsZero() {
		return
	}
	delta := new(big.Int).Mul(stored.BigInt(), r.pointsPerToken)
	correction := r.correctionOf(account)
	if increase {
		correction.Sub(correction, delta)
	} else {
		correction.Add(correction, delta)
	}
	r.pointsCorrection[account] = correction
}

func (r *rewardLedger) correctionOf(account common.AccountID) *big.Int {
	if c, ok := r.pointsCorrection[account]; ok {
		return new(big.Int).Set(c)
	}
	return big.NewInt(0)
}

func (r *rewardLedger) withdrawnOf(account common.AccountID) sdkmath.Int {
	if w, ok := r.withdrawn[account]; ok {
		return w
	}
	return sdkmath.ZeroInt()
}

// entitlement computes the account's cumulative entitlement:
// (stored(a) * points_per_token + points_correction[a]) >> POINTS_SHIFT.
func (r *rewardLedger) entitlement(account common.AccountID, stored sdkmath.Int) sdkmath.Int {
	product := new(big.Int).Mul(stored.BigInt(), r.pointsPerToken)
	product.Add(product, r.correctionOf(account))
	product.Rsh(product, pointsShift)
	if product.Sign() < 0 {
		product.SetInt64(0)
	}
	return sdkmath.NewIntFromBigInt(product)
}

// withdrawable returns entitlement(a) - withdrawn(a).
func (r *rewardLedger) withdrawable(account common.AccountID, stored sdkmath.Int) sdkmath.Int {
	return common.SaturatingSubInt(r.entitlement(account, stored), r.withdrawnOf(account))
}

// distribute folds amount into points_per_token, carrying the integer-division
// leftover into the next call (spec.md §4.1).
func (r *rewardLedger) distribute(amount sdkmath.Int, totalStoredSupply sdkmath.Int) error {
	if totalStoredSupply.IsZero() {
		return common.ErrNoHoldersToDistribute
	}
	total := amount.Add(r.pointsLeftover)
	scaled := new(big.Int).Lsh(total.BigInt(), pointsShift)
	supply := totalStoredSupply.BigInt()

	increment := new(big.Int).Quo(scaled, supply)
	r.pointsPerToken.Add(r.pointsPerToken, increment)

	// consumed is how much of `total` the new points_per_token accounts for, truncated;
	// whatever remains carries forward as points_leftover into the next distribution.
	consumedScaled := new(big.Int).Mul(increment, supply)
	consumed := new(big.Int).Rsh(consumedScaled, pointsShift)
	r.pointsLeftover = common.SaturatingSubInt(total, sdkmath.NewIntFromBigInt(consumed))

	r.distributedTotal = r.distributedTotal.Add(amount)
	r.withdrawableTotal = r.withdrawableTotal.Add(amount)
	return nil
}

// withdrawFunds marks `amount` as withdrawn by account and debits withdrawableTotal.
func (r *rewardLedger) withdrawFunds(account common.AccountID, stored sdkmath.Int) (sdkmath.Int, error) {
	amount := r.withdrawable(account, stored)
	if amount.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	r.withdrawn[account] = r.withdrawnOf(account).Add(amount)
	r.withdrawableTotal = common.SaturatingSubInt(r.withdrawableTotal, amount)
	return amount, nil
}

// Distribute accepts native funds of t.distributedToken and folds them into the reward
// ledger (spec.md §4.1). funds.Denom must match distributedToken.
func (t *Token) Distribute(funds common.Coin) error {
	if funds.Denom != t.distributedToken {
		return &common.InvalidDenom{Expected: t.distributedToken, Actual: funds.Denom}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.toDisplay(t.totalSupply).IsZero() {
		return common.ErrNoHoldersToDistribute
	}
	return t.rewards.distribute(funds.Amount, t.totalSupply)
}

// WithdrawableFunds returns account's current entitlement minus prior withdrawals.
func (t *Token) WithdrawableFunds(account common.AccountID) sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rewards.withdrawable(account, t.storedBalance(account))
}

// WithdrawFunds pays account its outstanding entitlement and returns the amount paid.
func (t *Token) WithdrawFunds(account common.AccountID) (common.Coin, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	amount, err := t.rewards.withdrawFunds(account, t.storedBalance(account))
	if err != nil {
		return common.Coin{}, err
	}
	return common.NewCoin(t.distributedToken, amount), nil
}

// DistributedFunds returns the cumulative amount ever distributed.
func (t *Token) DistributedFunds() sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rewards.distributedTotal
}

// UndistributedFunds returns the current withdrawable_total, i.e. funds distributed but
// not yet claimed by anyone.
func (t *Token) UndistributedFunds() sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rewards.withdrawableTotal
}
