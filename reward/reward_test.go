package reward_test

import (
	"math/rand"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-ledger/reward"
	"github.com/babylonchain/staking-ledger/testutil"
)

func TestAccruedRewardDefaultRate(t *testing.T) {
	r, err := reward.AccruedReward(sdkmath.NewUint(1_000_000), 0, 1_000_000, reward.DefaultRate())
	require.NoError(t, err)
	require.Equal(t, "7150", r.String())
}

func TestAccruedRewardZero(t *testing.T) {
	rate := reward.DefaultRate()

	r, err := reward.AccruedReward(sdkmath.NewUint(1_000_000), 42, 42, rate)
	require.NoError(t, err)
	require.True(t, r.IsZero())

	r, err = reward.AccruedReward(sdkmath.ZeroUint(), 0, 1_000_000, rate)
	require.NoError(t, err)
	require.True(t, r.IsZero())

	// truncated to zero
	r, err = reward.AccruedReward(sdkmath.NewUint(1), 0, 1, rate)
	require.NoError(t, err)
	require.True(t, r.IsZero())
}

func TestAccruedRewardErrors(t *testing.T) {
	_, err := reward.AccruedReward(sdkmath.NewUint(1), 10, 9, reward.DefaultRate())
	require.ErrorIs(t, err, reward.ErrCheckpointAhead)

	_, err = reward.AccruedReward(sdkmath.NewUint(1), 0, 9, reward.Rate{Numerator: 1})
	require.ErrorIs(t, err, reward.ErrInvalidRate)
}

// FuzzAccruedRewardMonotonic checks the reward never decreases when either
// the elapsed time or the balance grows
func FuzzAccruedRewardMonotonic(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))
		rate := reward.Rate{
			Numerator:   uint64(r.Int63n(10_000)),
			Denominator: uint64(r.Int63n(1_000_000_000_000)) + 1,
		}
		balance := testutil.RandomAmount(r)
		checkpoint := uint64(r.Int63n(1_000_000))
		dt := uint64(r.Int63n(10_000_000))

		base, err := reward.AccruedReward(balance, checkpoint, checkpoint+dt, rate)
		require.NoError(t, err)

		later, err := reward.AccruedReward(balance, checkpoint, checkpoint+dt+uint64(r.Int63n(1000)), rate)
		require.NoError(t, err)
		require.True(t, later.GTE(base))

		bigger, err := reward.AccruedReward(balance.Add(testutil.RandomAmount(r)), checkpoint, checkpoint+dt, rate)
		require.NoError(t, err)
		require.True(t, bigger.GTE(base))

		expected := balance.BigInt()
		expected.Mul(expected, sdkmath.NewUint(rate.Numerator).BigInt())
		expected.Mul(expected, sdkmath.NewUint(dt).BigInt())
		expected.Quo(expected, sdkmath.NewUint(rate.Denominator).BigInt())
		require.Equal(t, expected.String(), base.String())
	})
}
