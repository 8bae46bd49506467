package ledger

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// BeginWithdraw takes the whole unstaked balance out of the account before
// the transfer is issued, so it cannot be withdrawn twice. The saga carries
// the account as it was so a failed transfer can restore it.
func (l *Ledger) BeginWithdraw(accountID string) (*types.Saga, error) {
	sagaID := uuid.NewString()

	var saga *types.Saga
	if err := l.store.Update(func(tx *store.RwTx) error {
		acc, err := l.getAccount(&tx.RTx, accountID)
		if err != nil {
			return err
		}
		if err := l.checkNoPendingSaga(&tx.RTx, accountID); err != nil {
			return err
		}
		if acc.UnstakeBalance.IsZero() {
			return errorsmod.Wrapf(ErrZeroUnstakeBalance, "account %s", accountID)
		}
		if epoch := l.clock.Epoch(); epoch < acc.UnstakeUnlockEpoch {
			return errorsmod.Wrapf(ErrWithdrawLocked,
				"current epoch %d, unlock epoch %d", epoch, acc.UnstakeUnlockEpoch)
		}

		snapshot := acc.Copy()
		acc.UnstakeBalance = sdkmath.ZeroUint()
		acc.UnstakeStartTime = time.Time{}
		acc.UnstakeUnlockEpoch = 0

		saga = &types.Saga{
			ID:        sagaID,
			Kind:      types.SagaWithdraw,
			State:     types.SagaRequested,
			AccountID: accountID,
			Amount:    snapshot.UnstakeBalance,
			Snapshot:  snapshot,
			CreatedAt: l.clock.Now(),
		}

		if err := tx.PutAccount(accountID, acc); err != nil {
			return err
		}
		return tx.PutSaga(saga)
	}); err != nil {
		return nil, err
	}

	l.logger.Info("withdraw requested",
		zap.String("saga", saga.ID),
		zap.String("account", accountID),
		zap.String("amount", saga.Amount.String()),
	)

	return saga, nil
}

// BeginHarvest fixes the reward owed to the account as the transfer amount.
// The account is left untouched until the transfer succeeds.
func (l *Ledger) BeginHarvest(accountID string) (*types.Saga, error) {
	sagaID := uuid.NewString()

	var saga *types.Saga
	if err := l.store.Update(func(tx *store.RwTx) error {
		acc, err := l.getAccount(&tx.RTx, accountID)
		if err != nil {
			return err
		}
		if err := l.checkNoPendingSaga(&tx.RTx, accountID); err != nil {
			return err
		}
		now, _, err := l.effectiveNow(&tx.RTx)
		if err != nil {
			return err
		}
		accrued, err := l.accrued(acc.StakeBalance, acc.LastChangeCheckpoint, now)
		if err != nil {
			return err
		}

		amount := acc.PreReward.Add(accrued)
		if amount.IsZero() {
			return errorsmod.Wrapf(ErrZeroRewardOwed, "account %s", accountID)
		}

		saga = &types.Saga{
			ID:        sagaID,
			Kind:      types.SagaHarvest,
			State:     types.SagaRequested,
			AccountID: accountID,
			Amount:    amount,
			CreatedAt: l.clock.Now(),
		}

		return tx.PutSaga(saga)
	}); err != nil {
		return nil, err
	}

	l.logger.Info("harvest requested",
		zap.String("saga", saga.ID),
		zap.String("account", accountID),
		zap.String("amount", saga.Amount.String()),
	)

	return saga, nil
}

// Resolve applies the outcome of the transfer issued for the saga. A failed
// transfer is rolled back and reported as ErrExternalCallFailed together
// with the resolved saga. A malformed or unsettled outcome leaves the saga
// untouched.
func (l *Ledger) Resolve(sagaID string, outcome *types.TransferOutcome) (*types.Saga, error) {
	var (
		saga    *types.Saga
		callErr error
	)
	if err := l.store.Update(func(tx *store.RwTx) error {
		var err error
		callErr = nil
		saga, err = l.getSaga(&tx.RTx, sagaID)
		if err != nil {
			return err
		}
		if saga.State.IsTerminal() {
			return errorsmod.Wrapf(ErrSagaResolved, "saga %s is %s", sagaID, saga.State)
		}
		if err := checkOutcome(saga, outcome); err != nil {
			return err
		}

		policy, err := policyFor(saga.Kind)
		if err != nil {
			return err
		}

		result := outcome.Results[0]
		switch result.Status {
		case types.CallSucceeded:
			now, _, err := l.effectiveNow(&tx.RTx)
			if err != nil {
				return err
			}
			if err := policy.commit(l, tx, saga, now); err != nil {
				return err
			}
			saga.State = types.SagaCommitted
		case types.CallFailed:
			if err := policy.rollback(tx, saga); err != nil {
				return err
			}
			saga.State = types.SagaRolledBack
			callErr = errorsmod.Wrapf(ErrExternalCallFailed,
				"%s of %s for %s: %s", saga.Kind, saga.Amount, saga.AccountID, result.Reason)
		}
		saga.ResolvedAt = l.clock.Now()

		return tx.PutSaga(saga)
	}); err != nil {
		return nil, err
	}

	l.logger.Info("saga resolved",
		zap.String("saga", saga.ID),
		zap.String("kind", saga.Kind.String()),
		zap.String("account", saga.AccountID),
		zap.String("state", saga.State.String()),
	)

	return saga, callErr
}

// checkOutcome rejects outcomes that cannot come from exactly one settled
// transfer of this saga
func checkOutcome(saga *types.Saga, outcome *types.TransferOutcome) error {
	if outcome == nil {
		return errorsmod.Wrapf(ErrInvariantViolation, "saga %s: nil outcome", saga.ID)
	}
	if outcome.RequestID != "" && outcome.RequestID != saga.ID {
		return errorsmod.Wrapf(ErrInvariantViolation,
			"saga %s: outcome belongs to %s", saga.ID, outcome.RequestID)
	}
	if n := len(outcome.Results); n != 1 {
		return errorsmod.Wrapf(ErrInvariantViolation,
			"saga %s: expected exactly one transfer result, got %d", saga.ID, n)
	}
	switch outcome.Results[0].Status {
	case types.CallSucceeded, types.CallFailed:
		return nil
	default:
		return errorsmod.Wrapf(ErrInvariantViolation,
			"saga %s: transfer is %s at resolution", saga.ID, outcome.Results[0].Status)
	}
}
