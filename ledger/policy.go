package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// sagaPolicy decides what a settled transfer does to the ledger
type sagaPolicy interface {
	// commit finalizes the ledger after a successful transfer
	commit(l *Ledger, tx *store.RwTx, saga *types.Saga, now uint64) error
	// rollback compensates a failed transfer
	rollback(tx *store.RwTx, saga *types.Saga) error
}

func policyFor(kind types.SagaKind) (sagaPolicy, error) {
	switch kind {
	case types.SagaHarvest:
		return harvestPolicy{}, nil
	case types.SagaWithdraw:
		return withdrawPolicy{}, nil
	default:
		return nil, errorsmod.Wrapf(ErrInvariantViolation, "unknown saga kind %s", kind)
	}
}

// harvestPolicy defers every mutation to commit
type harvestPolicy struct{}

// commit zeroes the pending reward and restarts accrual at now. The amount
// was fixed when the harvest began.
func (harvestPolicy) commit(l *Ledger, tx *store.RwTx, saga *types.Saga, now uint64) error {
	acc, err := l.getAccount(&tx.RTx, saga.AccountID)
	if err != nil {
		return err
	}
	pool, err := tx.GetPool()
	if err != nil {
		return err
	}

	acc.PreReward = sdkmath.ZeroUint()
	acc.LastChangeCheckpoint = now
	pool.TotalPaidRewardBalance = pool.TotalPaidRewardBalance.Add(saga.Amount)

	if err := tx.PutAccount(saga.AccountID, acc); err != nil {
		return err
	}
	return tx.PutPool(pool)
}

func (harvestPolicy) rollback(*store.RwTx, *types.Saga) error {
	return nil
}

// withdrawPolicy mutates eagerly when the saga begins
type withdrawPolicy struct{}

func (withdrawPolicy) commit(_ *Ledger, _ *store.RwTx, saga *types.Saga, _ uint64) error {
	saga.Snapshot = nil
	return nil
}

// rollback restores the account exactly as it was before the withdraw
func (withdrawPolicy) rollback(tx *store.RwTx, saga *types.Saga) error {
	if saga.Snapshot == nil {
		return errorsmod.Wrapf(ErrInvariantViolation, "withdraw saga %s has no snapshot", saga.ID)
	}

	return tx.PutAccount(saga.AccountID, saga.Snapshot)
}
