package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Account is the staking record of a single participant
type Account struct {
	// StakeBalance is the amount currently earning reward
	StakeBalance sdkmath.Uint
	// PreReward is the reward folded in as of the last balance change
	PreReward sdkmath.Uint
	// LastChangeCheckpoint is the effective height of the last fold
	LastChangeCheckpoint uint64
	// UnstakeBalance is principal removed from staking but not withdrawn yet
	UnstakeBalance     sdkmath.Uint
	UnstakeStartTime   time.Time
	UnstakeUnlockEpoch uint64
}

// NewAccount returns a zeroed account checkpointed at the given height
func NewAccount(checkpoint uint64) *Account {
	return &Account{
		StakeBalance:         sdkmath.ZeroUint(),
		PreReward:            sdkmath.ZeroUint(),
		LastChangeCheckpoint: checkpoint,
		UnstakeBalance:       sdkmath.ZeroUint(),
	}
}

// Copy returns a detached copy of the account. Balances are immutable
// values so a shallow copy is enough.
func (a *Account) Copy() *Account {
	cp := *a
	return &cp
}

func (a *Account) IsActive() bool {
	return !a.StakeBalance.IsZero()
}

// Equal reports whether two accounts hold bit-identical state
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}

	return a.StakeBalance.Equal(other.StakeBalance) &&
		a.PreReward.Equal(other.PreReward) &&
		a.LastChangeCheckpoint == other.LastChangeCheckpoint &&
		a.UnstakeBalance.Equal(other.UnstakeBalance) &&
		a.UnstakeStartTime.Equal(other.UnstakeStartTime) &&
		a.UnstakeUnlockEpoch == other.UnstakeUnlockEpoch
}

// AccountInfo is the reporting view of an account
type AccountInfo struct {
	AccountID string
	Account   *Account
	// NewReward is the reward accrued since the last checkpoint
	NewReward sdkmath.Uint
	// TotalReward is PreReward plus NewReward
	TotalReward sdkmath.Uint
}
