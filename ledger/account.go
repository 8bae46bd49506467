package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// Register creates a zeroed account checkpointed at now
func (l *Ledger) Register(accountID string) (*types.Account, error) {
	if accountID == "" {
		return nil, errorsmod.Wrap(ErrInvalidAccountID, "empty account id")
	}

	var acc *types.Account
	if err := l.store.Update(func(tx *store.RwTx) error {
		exists, err := tx.HasAccount(accountID)
		if err != nil {
			return err
		}
		if exists {
			return errorsmod.Wrapf(ErrAlreadyRegistered, "account %s", accountID)
		}

		now, _, err := l.effectiveNow(&tx.RTx)
		if err != nil {
			return err
		}

		acc = types.NewAccount(now)
		return tx.PutAccount(accountID, acc)
	}); err != nil {
		return nil, err
	}

	l.logger.Debug("account registered", zap.String("account", accountID))

	return acc, nil
}

// Stake credits amount to the account. It is driven by a transfer
// notification, so caller must be the asset contract that moved the funds.
func (l *Ledger) Stake(caller, accountID string, amount sdkmath.Uint) (*types.Account, error) {
	var acc *types.Account
	if err := l.store.Update(func(tx *store.RwTx) error {
		var err error
		acc, err = l.getAccount(&tx.RTx, accountID)
		if err != nil {
			return err
		}
		now, pause, err := l.effectiveNow(&tx.RTx)
		if err != nil {
			return err
		}
		if pause.Paused {
			return ErrPoolPaused
		}
		if caller != l.params.AssetContractID {
			return errorsmod.Wrapf(ErrUnauthorizedCaller, "stake notified by %s", caller)
		}
		if amount.IsZero() {
			return ErrZeroAmount
		}
		if err := l.checkNoPendingSaga(&tx.RTx, accountID); err != nil {
			return err
		}
		pool, err := tx.GetPool()
		if err != nil {
			return err
		}

		activated := !acc.IsActive()
		if err := l.foldAccount(acc, now); err != nil {
			return err
		}
		acc.StakeBalance = acc.StakeBalance.Add(amount)

		if err := l.foldPool(pool, now); err != nil {
			return err
		}
		pool.TotalStakeBalance = pool.TotalStakeBalance.Add(amount)
		if activated {
			pool.TotalStakerCount++
		}

		if err := tx.PutAccount(accountID, acc); err != nil {
			return err
		}
		return tx.PutPool(pool)
	}); err != nil {
		return nil, err
	}

	l.logger.Debug("stake accepted",
		zap.String("account", accountID),
		zap.String("amount", amount.String()),
		zap.String("stake_balance", acc.StakeBalance.String()),
	)

	return acc, nil
}

// Unstake moves amount out of the earning balance. The principal becomes
// withdrawable from the next epoch on.
func (l *Ledger) Unstake(accountID string, amount sdkmath.Uint) (*types.Account, error) {
	var acc *types.Account
	if err := l.store.Update(func(tx *store.RwTx) error {
		var err error
		acc, err = l.getAccount(&tx.RTx, accountID)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return ErrZeroAmount
		}
		if err := l.checkNoPendingSaga(&tx.RTx, accountID); err != nil {
			return err
		}
		if amount.GT(acc.StakeBalance) {
			return errorsmod.Wrapf(ErrInsufficientStakeBalance,
				"unstake %s, stake balance %s", amount, acc.StakeBalance)
		}
		now, _, err := l.effectiveNow(&tx.RTx)
		if err != nil {
			return err
		}
		pool, err := tx.GetPool()
		if err != nil {
			return err
		}
		if amount.GT(pool.TotalStakeBalance) || pool.TotalStakerCount == 0 {
			return errorsmod.Wrapf(ErrInvariantViolation,
				"pool total %s with %d stakers cannot cover account stake %s",
				pool.TotalStakeBalance, pool.TotalStakerCount, acc.StakeBalance)
		}

		if err := l.foldAccount(acc, now); err != nil {
			return err
		}
		acc.StakeBalance = acc.StakeBalance.Sub(amount)
		acc.UnstakeBalance = acc.UnstakeBalance.Add(amount)
		acc.UnstakeStartTime = l.clock.Now()
		acc.UnstakeUnlockEpoch = l.clock.Epoch() + 1

		if err := l.foldPool(pool, now); err != nil {
			return err
		}
		pool.TotalStakeBalance = pool.TotalStakeBalance.Sub(amount)
		if !acc.IsActive() {
			pool.TotalStakerCount--
		}

		if err := tx.PutAccount(accountID, acc); err != nil {
			return err
		}
		return tx.PutPool(pool)
	}); err != nil {
		return nil, err
	}

	l.logger.Debug("unstake accepted",
		zap.String("account", accountID),
		zap.String("amount", amount.String()),
		zap.Uint64("unlock_epoch", acc.UnstakeUnlockEpoch),
	)

	return acc, nil
}

// foldAccount locks the reward accrued since the checkpoint into PreReward
func (l *Ledger) foldAccount(acc *types.Account, now uint64) error {
	accrued, err := l.accrued(acc.StakeBalance, acc.LastChangeCheckpoint, now)
	if err != nil {
		return err
	}

	acc.PreReward = acc.PreReward.Add(accrued)
	acc.LastChangeCheckpoint = now

	return nil
}
