package ledger_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/reward"
	"github.com/babylonchain/staking-ledger/testutil"
)

const (
	alice = "alice.stake"
	bob   = "bob.stake"
)

func registerAndStake(t *testing.T, l *ledger.Ledger, accountID string, amount uint64) {
	_, err := l.Register(accountID)
	require.NoError(t, err)
	_, err = l.Stake(testutil.AssetContractID, accountID, sdkmath.NewUint(amount))
	require.NoError(t, err)
}

func TestNewValidatesParams(t *testing.T) {
	st := testutil.NewTestLedgerStore(t)
	params := testutil.DefaultLedgerParams()
	params.Rate = reward.Rate{Numerator: 1}
	_, err := ledger.New(st, clock.NewManual(0, 0), params, zap.NewNop())
	require.ErrorIs(t, err, reward.ErrInvalidRate)
}

func TestRegister(t *testing.T) {
	clk := clock.NewManual(42, 0)
	l, _ := testutil.NewTestLedger(t, clk)

	registered, err := l.IsRegistered(alice)
	require.NoError(t, err)
	require.False(t, registered)

	acc, err := l.Register(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(42), acc.LastChangeCheckpoint)
	require.True(t, acc.StakeBalance.IsZero())

	_, err = l.Register(alice)
	require.ErrorIs(t, err, ledger.ErrAlreadyRegistered)

	_, err = l.Register("")
	require.ErrorIs(t, err, ledger.ErrInvalidAccountID)

	registered, err = l.IsRegistered(alice)
	require.NoError(t, err)
	require.True(t, registered)
}

func TestStakeValidation(t *testing.T) {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)
	amount := sdkmath.NewUint(100)

	_, err := l.Stake(testutil.AssetContractID, alice, amount)
	require.ErrorIs(t, err, ledger.ErrNotRegistered)

	_, err = l.Register(alice)
	require.NoError(t, err)

	_, err = l.Stake(alice, alice, amount)
	require.ErrorIs(t, err, ledger.ErrUnauthorizedCaller)

	_, err = l.Stake(testutil.AssetContractID, alice, sdkmath.ZeroUint())
	require.ErrorIs(t, err, ledger.ErrZeroAmount)

	_, err = l.Pause(testutil.OwnerID)
	require.NoError(t, err)
	_, err = l.Stake(testutil.AssetContractID, alice, amount)
	require.ErrorIs(t, err, ledger.ErrPoolPaused)

	// nothing was written by the rejected calls
	info, err := l.GetPool()
	require.NoError(t, err)
	require.True(t, info.Pool.TotalStakeBalance.IsZero())
	require.Zero(t, info.Pool.TotalStakerCount)
}

// TestAccrualAfterOneMillionBlocks stakes 1,000,000 at block 0 and reads the
// reward at block 1,000,000
func TestAccrualAfterOneMillionBlocks(t *testing.T) {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)
	registerAndStake(t, l, alice, 1_000_000)

	clk.SetHeight(1_000_000)

	r, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.Equal(t, "7150", r.String())

	info, err := l.GetPool()
	require.NoError(t, err)
	require.Equal(t, "7150", info.TotalReward.String())
	require.Equal(t, uint64(1), info.Pool.TotalStakerCount)
	require.Equal(t, "1000000", info.Pool.TotalStakeBalance.String())
}

func TestStakeFoldsReward(t *testing.T) {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)
	registerAndStake(t, l, alice, 1_000_000)

	clk.SetHeight(1_000_000)
	acc, err := l.Stake(testutil.AssetContractID, alice, sdkmath.NewUint(1_000_000))
	require.NoError(t, err)
	require.Equal(t, "7150", acc.PreReward.String())
	require.Equal(t, uint64(1_000_000), acc.LastChangeCheckpoint)
	require.Equal(t, "2000000", acc.StakeBalance.String())

	clk.SetHeight(2_000_000)
	r, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.Equal(t, "21450", r.String())

	// a second stake on an active account does not count it twice
	info, err := l.GetPool()
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.Pool.TotalStakerCount)
	require.Equal(t, "21450", info.TotalReward.String())
}

func TestUnstake(t *testing.T) {
	clk := clock.NewManual(0, 3)
	l, _ := testutil.NewTestLedger(t, clk)
	registerAndStake(t, l, alice, 1_000)

	_, err := l.Unstake(alice, sdkmath.NewUint(1_001))
	require.ErrorIs(t, err, ledger.ErrInsufficientStakeBalance)

	_, err = l.Unstake(alice, sdkmath.ZeroUint())
	require.ErrorIs(t, err, ledger.ErrZeroAmount)

	_, err = l.Unstake(bob, sdkmath.NewUint(1))
	require.ErrorIs(t, err, ledger.ErrNotRegistered)

	acc, err := l.Unstake(alice, sdkmath.NewUint(1_000))
	require.NoError(t, err)
	require.True(t, acc.StakeBalance.IsZero())
	require.Equal(t, "1000", acc.UnstakeBalance.String())
	require.Equal(t, uint64(4), acc.UnstakeUnlockEpoch)
	require.Equal(t, clk.Now(), acc.UnstakeStartTime)

	info, err := l.GetPool()
	require.NoError(t, err)
	require.Zero(t, info.Pool.TotalStakerCount)
	require.True(t, info.Pool.TotalStakeBalance.IsZero())
}

// TestPoolRewardIsAggregate has two stakers with different checkpoints. The
// pool projection rounds once on the aggregate so it differs from the sum of
// the per-account projections.
func TestPoolRewardIsAggregate(t *testing.T) {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)
	registerAndStake(t, l, alice, 1_000_000)

	clk.SetHeight(333_333)
	registerAndStake(t, l, bob, 2_345_678)

	clk.SetHeight(1_000_000)

	aliceReward, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.Equal(t, "7150", aliceReward.String())

	bobReward, err := l.GetAccountReward(bob)
	require.NoError(t, err)
	require.Equal(t, "11181", bobReward.String())

	poolReward, err := l.GetPoolReward()
	require.NoError(t, err)
	require.Equal(t, "18330", poolReward.String())

	// pre reward folded at bob's stake plus accrual of the whole pool since
	fromFormula, err := reward.AccruedReward(sdkmath.NewUint(1_000_000), 0, 333_333, reward.DefaultRate())
	require.NoError(t, err)
	rest, err := reward.AccruedReward(sdkmath.NewUint(3_345_678), 333_333, 1_000_000, reward.DefaultRate())
	require.NoError(t, err)
	require.True(t, poolReward.Equal(fromFormula.Add(rest)))
	require.False(t, poolReward.Equal(aliceReward.Add(bobReward)))
}

func TestPauseFreezesAccrual(t *testing.T) {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)
	registerAndStake(t, l, alice, 1_000_000)

	_, err := l.Pause(alice)
	require.ErrorIs(t, err, ledger.ErrUnauthorizedCaller)
	_, err = l.Resume(testutil.OwnerID)
	require.ErrorIs(t, err, ledger.ErrPauseUnchanged)

	clk.SetHeight(1_000_000)
	state, err := l.Pause(testutil.OwnerID)
	require.NoError(t, err)
	require.True(t, state.Paused)
	require.Equal(t, uint64(1_000_000), state.PauseCheckpoint)

	_, err = l.Pause(testutil.OwnerID)
	require.ErrorIs(t, err, ledger.ErrPauseUnchanged)

	frozen, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.Equal(t, "7150", frozen.String())

	clk.SetHeight(3_000_000)
	later, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.True(t, later.Equal(frozen))

	// unstake is allowed while paused and folds at the frozen height
	acc, err := l.Unstake(alice, sdkmath.NewUint(500_000))
	require.NoError(t, err)
	require.Equal(t, "7150", acc.PreReward.String())
	require.Equal(t, uint64(1_000_000), acc.LastChangeCheckpoint)

	paused, err := l.IsPaused()
	require.NoError(t, err)
	require.True(t, paused)

	// the paused interval never earns reward after resuming
	_, err = l.Resume(testutil.OwnerID)
	require.NoError(t, err)
	clk.SetHeight(4_000_000)
	resumed, err := l.GetAccountReward(alice)
	require.NoError(t, err)
	require.Equal(t, "10725", resumed.String())
}
