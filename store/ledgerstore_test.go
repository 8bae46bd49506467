package store_test

import (
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/testutil"
	"github.com/babylonchain/staking-ledger/types"
)

func genRandomAccount(r *rand.Rand) *types.Account {
	acc := types.NewAccount(r.Uint64())
	acc.StakeBalance = testutil.RandomAmount(r)
	acc.PreReward = testutil.RandomAmount(r)
	if r.Intn(2) == 0 {
		acc.UnstakeBalance = testutil.RandomAmount(r)
		acc.UnstakeStartTime = time.Unix(0, r.Int63()).UTC()
		acc.UnstakeUnlockEpoch = r.Uint64()
	}

	return acc
}

// FuzzAccountStore tests storing and loading accounts
func FuzzAccountStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))
		st := testutil.NewTestLedgerStore(t)

		accounts := make(map[string]*types.Account)
		err := st.Update(func(tx *store.RwTx) error {
			n := 1 + r.Intn(10)
			for i := 0; i < n; i++ {
				id := testutil.GenRandomAccountID(r)
				acc := genRandomAccount(r)
				accounts[id] = acc
				if err := tx.PutAccount(id, acc); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		err = st.View(func(tx *store.RTx) error {
			for id, expected := range accounts {
				acc, err := tx.GetAccount(id)
				require.NoError(t, err)
				require.True(t, expected.Equal(acc))

				has, err := tx.HasAccount(id)
				require.NoError(t, err)
				require.True(t, has)
			}

			var count int
			err := tx.ForEachAccount(func(id string, a *types.Account) error {
				count++
				require.True(t, accounts[id].Equal(a))
				return nil
			})
			require.NoError(t, err)
			require.Equal(t, len(accounts), count)

			_, err = tx.GetAccount("unknown")
			require.ErrorIs(t, err, store.ErrAccountNotFound)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestPoolAndPauseRecords(t *testing.T) {
	st := testutil.NewTestLedgerStore(t)

	err := st.View(func(tx *store.RTx) error {
		_, err := tx.GetPool()
		require.ErrorIs(t, err, store.ErrPoolNotFound)

		pause, err := tx.GetPauseState()
		require.NoError(t, err)
		require.False(t, pause.Paused)
		return nil
	})
	require.NoError(t, err)

	pool := types.NewPool(7)
	pool.TotalStakeBalance = sdkmath.NewUint(1_000_000)
	pool.TotalStakerCount = 3
	pool.TotalPaidRewardBalance = sdkmath.NewUint(42)
	pause := &types.PauseState{Paused: true, PauseCheckpoint: 100, PausedOffset: 20}

	err = st.Update(func(tx *store.RwTx) error {
		if err := tx.PutPool(pool); err != nil {
			return err
		}
		return tx.PutPauseState(pause)
	})
	require.NoError(t, err)

	err = st.View(func(tx *store.RTx) error {
		got, err := tx.GetPool()
		require.NoError(t, err)
		require.Equal(t, "1000000", got.TotalStakeBalance.String())
		require.Equal(t, "42", got.TotalPaidRewardBalance.String())
		require.True(t, got.PreReward.IsZero())
		require.Equal(t, uint64(3), got.TotalStakerCount)
		require.Equal(t, uint64(7), got.LastChangeCheckpoint)

		gotPause, err := tx.GetPauseState()
		require.NoError(t, err)
		require.Equal(t, pause, gotPause)
		return nil
	})
	require.NoError(t, err)
}

func TestFailedUpdateWritesNothing(t *testing.T) {
	st := testutil.NewTestLedgerStore(t)

	err := st.Update(func(tx *store.RwTx) error {
		if err := tx.PutAccount("alice.stake", types.NewAccount(0)); err != nil {
			return err
		}
		return store.ErrCorruptedLedgerDb
	})
	require.ErrorIs(t, err, store.ErrCorruptedLedgerDb)

	err = st.View(func(tx *store.RTx) error {
		has, err := tx.HasAccount("alice.stake")
		require.NoError(t, err)
		require.False(t, has)
		return nil
	})
	require.NoError(t, err)
}

func TestPendingSagaIndex(t *testing.T) {
	st := testutil.NewTestLedgerStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	snapshot := types.NewAccount(10)
	snapshot.UnstakeBalance = sdkmath.NewUint(500)
	snapshot.UnstakeStartTime = created
	snapshot.UnstakeUnlockEpoch = 4

	withdraw := &types.Saga{
		ID:        "saga-1",
		Kind:      types.SagaWithdraw,
		State:     types.SagaRequested,
		AccountID: "alice.stake",
		Amount:    sdkmath.NewUint(500),
		Snapshot:  snapshot,
		CreatedAt: created,
	}
	harvest := &types.Saga{
		ID:        "saga-2",
		Kind:      types.SagaHarvest,
		State:     types.SagaRequested,
		AccountID: "bob.stake",
		Amount:    sdkmath.NewUint(7),
		CreatedAt: created,
	}

	err := st.Update(func(tx *store.RwTx) error {
		if err := tx.PutSaga(withdraw); err != nil {
			return err
		}
		return tx.PutSaga(harvest)
	})
	require.NoError(t, err)

	err = st.View(func(tx *store.RTx) error {
		id, found, err := tx.PendingSagaID("alice.stake")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "saga-1", id)

		got, err := tx.GetSaga("saga-1")
		require.NoError(t, err)
		require.Equal(t, types.SagaWithdraw, got.Kind)
		require.Equal(t, "500", got.Amount.String())
		require.True(t, got.CreatedAt.Equal(created))
		require.True(t, got.ResolvedAt.IsZero())
		require.True(t, snapshot.Equal(got.Snapshot))

		pending, err := tx.PendingSagas()
		require.NoError(t, err)
		require.Len(t, pending, 2)
		return nil
	})
	require.NoError(t, err)

	withdraw.State = types.SagaCommitted
	withdraw.Snapshot = nil
	withdraw.ResolvedAt = created.Add(time.Minute)
	err = st.Update(func(tx *store.RwTx) error {
		return tx.PutSaga(withdraw)
	})
	require.NoError(t, err)

	err = st.View(func(tx *store.RTx) error {
		_, found, err := tx.PendingSagaID("alice.stake")
		require.NoError(t, err)
		require.False(t, found)

		got, err := tx.GetSaga("saga-1")
		require.NoError(t, err)
		require.Equal(t, types.SagaCommitted, got.State)
		require.Nil(t, got.Snapshot)

		pending, err := tx.PendingSagas()
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, "saga-2", pending[0].ID)

		_, err = tx.GetSaga("saga-3")
		require.ErrorIs(t, err, store.ErrSagaNotFound)
		return nil
	})
	require.NoError(t, err)
}
