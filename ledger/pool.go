package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// foldPool is the pool-level twin of foldAccount. It runs on the pool's own
// total and checkpoint, before the total changes.
func (l *Ledger) foldPool(pool *types.Pool, now uint64) error {
	accrued, err := l.accrued(pool.TotalStakeBalance, pool.LastChangeCheckpoint, now)
	if err != nil {
		return err
	}

	pool.PreReward = pool.PreReward.Add(accrued)
	pool.LastChangeCheckpoint = now

	return nil
}

// GetPool returns the pool aggregate with its reward projected to now. The
// projection is computed on the aggregate and differs from the sum of the
// account rewards whenever their checkpoints differ.
func (l *Ledger) GetPool() (*types.PoolInfo, error) {
	var info *types.PoolInfo
	err := l.store.View(func(tx *store.RTx) error {
		pool, err := tx.GetPool()
		if err != nil {
			return err
		}
		now, pause, err := l.effectiveNow(tx)
		if err != nil {
			return err
		}
		accrued, err := l.accrued(pool.TotalStakeBalance, pool.LastChangeCheckpoint, now)
		if err != nil {
			return err
		}

		info = &types.PoolInfo{
			Pool:        pool,
			TotalReward: pool.PreReward.Add(accrued),
			Paused:      pause.Paused,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

func (l *Ledger) GetPoolReward() (sdkmath.Uint, error) {
	info, err := l.GetPool()
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	return info.TotalReward, nil
}
