package types

import (
	sdkmath "cosmossdk.io/math"
)

// Pool aggregates every account of the ledger. It is kept in step with the
// accounts by deltas and is never recomputed from them.
type Pool struct {
	TotalStakeBalance      sdkmath.Uint
	TotalPaidRewardBalance sdkmath.Uint
	TotalStakerCount       uint64
	PreReward              sdkmath.Uint
	LastChangeCheckpoint   uint64
}

func NewPool(checkpoint uint64) *Pool {
	return &Pool{
		TotalStakeBalance:      sdkmath.ZeroUint(),
		TotalPaidRewardBalance: sdkmath.ZeroUint(),
		PreReward:              sdkmath.ZeroUint(),
		LastChangeCheckpoint:   checkpoint,
	}
}

// PoolInfo is the reporting view of the pool
type PoolInfo struct {
	Pool *Pool
	// TotalReward is the projected reward of the pool aggregate
	TotalReward sdkmath.Uint
	Paused      bool
}

// PauseState freezes the reward clock. Heights handed to the ledger are
// effective heights: the raw block height minus the time spent paused.
type PauseState struct {
	Paused bool
	// PauseCheckpoint is the effective height at which the last pause began
	PauseCheckpoint uint64
	// PausedOffset counts the blocks spent paused before the last resume
	PausedOffset uint64
}

// EffectiveNow maps a raw block height to the height used for accrual
func (p *PauseState) EffectiveNow(height uint64) uint64 {
	if p.Paused {
		return p.PauseCheckpoint
	}
	if height < p.PausedOffset {
		return 0
	}

	return height - p.PausedOffset
}
