package service

import (
	"time"

	"github.com/babylonchain/staking-ledger/types"
)

// Amounts are decimal strings on the wire.

type AccountResponse struct {
	AccountID            string `json:"account_id"`
	StakeBalance         string `json:"stake_balance"`
	PreReward            string `json:"pre_reward"`
	LastChangeCheckpoint uint64 `json:"last_change_checkpoint"`
	UnstakeBalance       string `json:"unstake_balance"`
	UnstakeStartTime     string `json:"unstake_start_time,omitempty"`
	UnstakeUnlockEpoch   uint64 `json:"unstake_unlock_epoch"`
	NewReward            string `json:"new_reward"`
	TotalReward          string `json:"total_reward"`
}

func NewAccountResponse(info *types.AccountInfo) *AccountResponse {
	return &AccountResponse{
		AccountID:            info.AccountID,
		StakeBalance:         info.Account.StakeBalance.String(),
		PreReward:            info.Account.PreReward.String(),
		LastChangeCheckpoint: info.Account.LastChangeCheckpoint,
		UnstakeBalance:       info.Account.UnstakeBalance.String(),
		UnstakeStartTime:     formatTime(info.Account.UnstakeStartTime),
		UnstakeUnlockEpoch:   info.Account.UnstakeUnlockEpoch,
		NewReward:            info.NewReward.String(),
		TotalReward:          info.TotalReward.String(),
	}
}

type RewardResponse struct {
	AccountID string `json:"account_id"`
	Reward    string `json:"reward"`
}

type RegisteredResponse struct {
	AccountID  string `json:"account_id"`
	Registered bool   `json:"registered"`
}

type PoolResponse struct {
	TotalStakeBalance      string `json:"total_stake_balance"`
	TotalPaidRewardBalance string `json:"total_paid_reward_balance"`
	TotalStakerCount       uint64 `json:"total_staker_count"`
	PreReward              string `json:"pre_reward"`
	LastChangeCheckpoint   uint64 `json:"last_change_checkpoint"`
	TotalReward            string `json:"total_reward"`
	Paused                 bool   `json:"paused"`
}

func NewPoolResponse(info *types.PoolInfo) *PoolResponse {
	return &PoolResponse{
		TotalStakeBalance:      info.Pool.TotalStakeBalance.String(),
		TotalPaidRewardBalance: info.Pool.TotalPaidRewardBalance.String(),
		TotalStakerCount:       info.Pool.TotalStakerCount,
		PreReward:              info.Pool.PreReward.String(),
		LastChangeCheckpoint:   info.Pool.LastChangeCheckpoint,
		TotalReward:            info.TotalReward.String(),
		Paused:                 info.Paused,
	}
}

// PauseResponse reports the pause state. PauseCheckpoint is an effective
// height, the block height minus the blocks spent paused before the current
// pause, so it equals the block height only for the first pause.
// PausedOffset is the total number of blocks spent paused so far.
type PauseResponse struct {
	Paused          bool   `json:"paused"`
	PauseCheckpoint uint64 `json:"pause_checkpoint"`
	PausedOffset    uint64 `json:"paused_offset"`
}

func NewPauseResponse(p *types.PauseState) *PauseResponse {
	return &PauseResponse{
		Paused:          p.Paused,
		PauseCheckpoint: p.PauseCheckpoint,
		PausedOffset:    p.PausedOffset,
	}
}

// SagaResponse is also the token handed out when a transfer is started
type SagaResponse struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	State      string `json:"state"`
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	CreatedAt  string `json:"created_at,omitempty"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

func NewSagaResponse(s *types.Saga) *SagaResponse {
	return &SagaResponse{
		ID:         s.ID,
		Kind:       s.Kind.String(),
		State:      s.State.String(),
		AccountID:  s.AccountID,
		Amount:     s.Amount.String(),
		CreatedAt:  formatTime(s.CreatedAt),
		ResolvedAt: formatTime(s.ResolvedAt),
	}
}

type NotifyTransferRequest struct {
	Sender string `json:"sender"`
	Amount string `json:"amount"`
}

type UnstakeRequest struct {
	Amount string `json:"amount"`
}

type ErrorResponse struct {
	Code    uint32 `json:"code,omitempty"`
	Message string `json:"message"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
