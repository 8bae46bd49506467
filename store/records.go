package store

import (
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/babylonchain/staking-ledger/types"
)

// accountRecord is the stored form of types.Account (RLP encoded)
type accountRecord struct {
	StakeBalance         *big.Int
	PreReward            *big.Int
	LastChangeCheckpoint uint64
	UnstakeBalance       *big.Int
	UnstakeStartTime     uint64 // unix nanoseconds, 0 when unset
	UnstakeUnlockEpoch   uint64
}

// poolRecord is the stored form of types.Pool (RLP encoded)
type poolRecord struct {
	TotalStakeBalance      *big.Int
	TotalPaidRewardBalance *big.Int
	TotalStakerCount       uint64
	PreReward              *big.Int
	LastChangeCheckpoint   uint64
}

type pauseRecord struct {
	Paused          bool
	PauseCheckpoint uint64
	PausedOffset    uint64
}

// sagaRecord is the stored form of types.Saga (RLP encoded)
type sagaRecord struct {
	ID          string
	Kind        uint8
	State       uint8
	AccountID   string
	Amount      *big.Int
	HasSnapshot bool
	Snapshot    accountRecord
	CreatedAt   uint64
	ResolvedAt  uint64
}

func encodeTime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano())
}

func decodeTime(n uint64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(n)).UTC()
}

func decodeUint(i *big.Int) sdkmath.Uint {
	if i == nil {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(i)
}

func newAccountRecord(a *types.Account) accountRecord {
	return accountRecord{
		StakeBalance:         a.StakeBalance.BigInt(),
		PreReward:            a.PreReward.BigInt(),
		LastChangeCheckpoint: a.LastChangeCheckpoint,
		UnstakeBalance:       a.UnstakeBalance.BigInt(),
		UnstakeStartTime:     encodeTime(a.UnstakeStartTime),
		UnstakeUnlockEpoch:   a.UnstakeUnlockEpoch,
	}
}

func (r *accountRecord) toAccount() *types.Account {
	return &types.Account{
		StakeBalance:         decodeUint(r.StakeBalance),
		PreReward:            decodeUint(r.PreReward),
		LastChangeCheckpoint: r.LastChangeCheckpoint,
		UnstakeBalance:       decodeUint(r.UnstakeBalance),
		UnstakeStartTime:     decodeTime(r.UnstakeStartTime),
		UnstakeUnlockEpoch:   r.UnstakeUnlockEpoch,
	}
}

func marshalAccount(a *types.Account) ([]byte, error) {
	r := newAccountRecord(a)
	return rlp.EncodeToBytes(&r)
}

func unmarshalAccount(data []byte) (*types.Account, error) {
	var r accountRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return r.toAccount(), nil
}

func marshalPool(p *types.Pool) ([]byte, error) {
	return rlp.EncodeToBytes(&poolRecord{
		TotalStakeBalance:      p.TotalStakeBalance.BigInt(),
		TotalPaidRewardBalance: p.TotalPaidRewardBalance.BigInt(),
		TotalStakerCount:       p.TotalStakerCount,
		PreReward:              p.PreReward.BigInt(),
		LastChangeCheckpoint:   p.LastChangeCheckpoint,
	})
}

func unmarshalPool(data []byte) (*types.Pool, error) {
	var r poolRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return &types.Pool{
		TotalStakeBalance:      decodeUint(r.TotalStakeBalance),
		TotalPaidRewardBalance: decodeUint(r.TotalPaidRewardBalance),
		TotalStakerCount:       r.TotalStakerCount,
		PreReward:              decodeUint(r.PreReward),
		LastChangeCheckpoint:   r.LastChangeCheckpoint,
	}, nil
}

func marshalPauseState(p *types.PauseState) ([]byte, error) {
	return rlp.EncodeToBytes(&pauseRecord{
		Paused:          p.Paused,
		PauseCheckpoint: p.PauseCheckpoint,
		PausedOffset:    p.PausedOffset,
	})
}

func unmarshalPauseState(data []byte) (*types.PauseState, error) {
	var r pauseRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return &types.PauseState{
		Paused:          r.Paused,
		PauseCheckpoint: r.PauseCheckpoint,
		PausedOffset:    r.PausedOffset,
	}, nil
}

func marshalSaga(s *types.Saga) ([]byte, error) {
	r := sagaRecord{
		ID:         s.ID,
		Kind:       uint8(s.Kind),
		State:      uint8(s.State),
		AccountID:  s.AccountID,
		Amount:     s.Amount.BigInt(),
		CreatedAt:  encodeTime(s.CreatedAt),
		ResolvedAt: encodeTime(s.ResolvedAt),
	}
	if s.Snapshot != nil {
		r.HasSnapshot = true
		r.Snapshot = newAccountRecord(s.Snapshot)
	}

	return rlp.EncodeToBytes(&r)
}

func unmarshalSaga(data []byte) (*types.Saga, error) {
	var r sagaRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}

	s := &types.Saga{
		ID:         r.ID,
		Kind:       types.SagaKind(r.Kind),
		State:      types.SagaState(r.State),
		AccountID:  r.AccountID,
		Amount:     decodeUint(r.Amount),
		CreatedAt:  decodeTime(r.CreatedAt),
		ResolvedAt: decodeTime(r.ResolvedAt),
	}
	if r.HasSnapshot {
		s.Snapshot = r.Snapshot.toAccount()
	}

	return s, nil
}
