package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/isotonic/common"
)

// unlimitedController allows any transfer, used where tests don't exercise the
// transferable-amount gate.
type unlimitedController struct{}

func (unlimitedController) TransferableAmount(common.AccountID, common.AccountID) (sdkmath.Int, error) {
	return sdkmath.NewInt(1_000_000_000), nil
}

func newTestToken() *Token {
	return New(Config{
		Name:             "Lent ATOM",
		Symbol:           "L-ATOM",
		Decimals:         6,
		Self:             "ltoken-atom",
		Controller:       unlimitedController{},
		DistributedToken: "reward",
	})
}

func TestMintAndBalance(t *testing.T) {
	tok := newTestToken()

	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(100)))
	assert.True(t, tok.Balance("alice").Equal(sdkmath.NewInt(100)))
	assert.True(t, tok.TotalSupply().Equal(sdkmath.NewInt(100)))

	err := tok.Mint("alice", sdkmath.ZeroInt())
	assert.ErrorIs(t, err, common.ErrInvalidZeroAmount)
}

func TestBurnFromInsufficientFails(t *testing.T) {
	tok := newTestToken()
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(50)))

	err := tok.BurnFrom("alice", sdkmath.NewInt(51))
	require.Error(t, err)
	var insufficient *common.InsufficientTokens
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(sdkmath.NewInt(50)))
	assert.True(t, insufficient.Needed.Equal(sdkmath.NewInt(51)))
}

func TestRebasePreservesTotalSupplyIdentity(t *testing.T) {
	tok := newTestToken()
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(1000)))
	require.NoError(t, tok.Mint("bob", sdkmath.NewInt(500)))

	require.NoError(t, tok.Rebase(sdkmath.LegacyMustNewDecFromStr("1.2")))

	// display_total_supply = stored_total_supply * multiplier
	gotSupply := tok.TotalSupply()
	wantSupply := tok.multiplier.MulInt(tok.totalSupply).TruncateInt()
	assert.True(t, gotSupply.Equal(wantSupply))

	// relative balances unchanged: alice is still exactly 2x bob
	aliceAfter := tok.Balance("alice")
	bobAfter := tok.Balance("bob")
	assert.True(t, aliceAfter.Equal(bobAfter.MulRaw(2)))
}

func TestRebaseMonotonicWithRatioGEOne(t *testing.T) {
	tok := newTestToken()
	start := tok.Multiplier()
	require.NoError(t, tok.Rebase(sdkmath.LegacyMustNewDecFromStr("1.05")))
	after := tok.Multiplier()
	assert.True(t, after.GTE(start))
}

func TestTransferRespectsTransferableCap(t *testing.T) {
	tok := New(Config{
		Name: "t", Symbol: "T", Self: "tok",
		Controller: fixedController{max: sdkmath.NewInt(10)},
	})
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(100)))

	err := tok.Transfer("alice", "bob", sdkmath.NewInt(11))
	require.Error(t, err)
	var cannotTransfer *common.CannotTransfer
	require.ErrorAs(t, err, &cannotTransfer)
	assert.True(t, cannotTransfer.MaxTransferable.Equal(sdkmath.NewInt(10)))

	require.NoError(t, tok.Transfer("alice", "bob", sdkmath.NewInt(10)))
	assert.True(t, tok.Balance("bob").Equal(sdkmath.NewInt(10)))
}

type fixedController struct {
	max sdkmath.Int
}

func (f fixedController) TransferableAmount(common.AccountID, common.AccountID) (sdkmath.Int, error) {
	return f.max, nil
}

func TestDistributeAndWithdrawFunds(t *testing.T) {
	tok := newTestToken()
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(100)))
	require.NoError(t, tok.Mint("bob", sdkmath.NewInt(300)))

	require.NoError(t, tok.Distribute(common.NewCoin("reward", sdkmath.NewInt(40))))

	aliceFunds := tok.WithdrawableFunds("alice")
	bobFunds := tok.WithdrawableFunds("bob")

	// pro-rata: alice holds 1/4 of supply, bob 3/4. points_per_token is
	// floor(40<<32 / 400) = 429496729, just under 0.1<<32, so the shifted-back
	// entitlements truncate to 9 and 29 rather than 10 and 30.
	assert.True(t, aliceFunds.Equal(sdkmath.NewInt(9)))
	assert.True(t, bobFunds.Equal(sdkmath.NewInt(29)))

	paid, err := tok.WithdrawFunds("alice")
	require.NoError(t, err)
	assert.Equal(t, "reward", paid.Denom)
	assert.True(t, paid.Amount.Equal(sdkmath.NewInt(9)))
	assert.True(t, tok.WithdrawableFunds("alice").IsZero())
}

func TestDistributeFailsWithNoSupply(t *testing.T) {
	tok := newTestToken()
	err := tok.Distribute(common.NewCoin("reward", sdkmath.NewInt(10)))
	assert.ErrorIs(t, err, common.ErrNoHoldersToDistribute)
}

func TestDistributeWrongDenomFails(t *testing.T) {
	tok := newTestToken()
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(100)))
	err := tok.Distribute(common.NewCoin("other", sdkmath.NewInt(10)))
	var invalidDenom *common.InvalidDenom
	require.ErrorAs(t, err, &invalidDenom)
}

func TestRewardEntitlementNeverLessThanWithdrawn(t *testing.T) {
	tok := newTestToken()
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(7)))
	require.NoError(t, tok.Mint("bob", sdkmath.NewInt(13)))

	require.NoError(t, tok.Distribute(common.NewCoin("reward", sdkmath.NewInt(99))))
	require.NoError(t, tok.Mint("alice", sdkmath.NewInt(3))) // balance change mid-stream

	_, err := tok.WithdrawFunds("alice")
	require.NoError(t, err)
	_, err = tok.WithdrawFunds("bob")
	require.NoError(t, err)

	assert.True(t, tok.WithdrawableFunds("alice").GTE(sdkmath.ZeroInt()))
	assert.True(t, tok.WithdrawableFunds("bob").GTE(sdkmath.ZeroInt()))
}
