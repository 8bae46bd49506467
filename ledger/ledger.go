package ledger

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	"github.com/babylonchain/staking-ledger/reward"
	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// Params are fixed for the lifetime of the pool
type Params struct {
	Rate reward.Rate
	// OwnerID may pause and resume the pool
	OwnerID string
	// AssetContractID is the only caller whose transfer notifications are
	// accepted as stakes
	AssetContractID string
}

func (p *Params) Validate() error {
	if err := p.Rate.Validate(); err != nil {
		return err
	}
	if p.OwnerID == "" {
		return fmt.Errorf("empty owner id")
	}
	if p.AssetContractID == "" {
		return fmt.Errorf("empty asset contract id")
	}

	return nil
}

// Ledger is the aggregate root of the staking pool: the pool record, the
// pause state, every account and the outstanding sagas. Each operation runs
// in one store transaction and validates before it mutates.
type Ledger struct {
	store  *store.LedgerStore
	clock  clock.Source
	params Params
	logger *zap.Logger
}

// New opens the ledger on st, creating the pool record on first use
func New(st *store.LedgerStore, clk clock.Source, params Params, logger *zap.Logger) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger params: %w", err)
	}

	l := &Ledger{
		store:  st,
		clock:  clk,
		params: params,
		logger: logger,
	}

	if err := st.Update(func(tx *store.RwTx) error {
		_, err := tx.GetPool()
		if !errors.Is(err, store.ErrPoolNotFound) {
			return err
		}

		now, _, err := l.effectiveNow(&tx.RTx)
		if err != nil {
			return err
		}
		logger.Info("initializing staking pool", zap.Uint64("checkpoint", now))

		return tx.PutPool(types.NewPool(now))
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize the pool: %w", err)
	}

	return l, nil
}

func (l *Ledger) Params() Params {
	return l.params
}

// effectiveNow is the height every accrual of the ledger is computed at. It
// stays frozen while the pool is paused.
func (l *Ledger) effectiveNow(tx *store.RTx) (uint64, *types.PauseState, error) {
	pause, err := tx.GetPauseState()
	if err != nil {
		return 0, nil, err
	}

	return pause.EffectiveNow(l.clock.BlockHeight()), pause, nil
}

func (l *Ledger) getAccount(tx *store.RTx, accountID string) (*types.Account, error) {
	acc, err := tx.GetAccount(accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return nil, errorsmod.Wrapf(ErrNotRegistered, "account %s", accountID)
	}

	return acc, err
}

func (l *Ledger) checkNoPendingSaga(tx *store.RTx, accountID string) error {
	sagaID, found, err := tx.PendingSagaID(accountID)
	if err != nil {
		return err
	}
	if found {
		return errorsmod.Wrapf(ErrSagaInProgress, "account %s, saga %s", accountID, sagaID)
	}

	return nil
}

func (l *Ledger) accrued(balance sdkmath.Uint, checkpoint, now uint64) (sdkmath.Uint, error) {
	r, err := reward.AccruedReward(balance, checkpoint, now, l.params.Rate)
	if err != nil {
		return sdkmath.ZeroUint(), errorsmod.Wrap(ErrInvariantViolation, err.Error())
	}

	return r, nil
}

// IsRegistered reports whether the account exists
func (l *Ledger) IsRegistered(accountID string) (bool, error) {
	var registered bool
	err := l.store.View(func(tx *store.RTx) error {
		var err error
		registered, err = tx.HasAccount(accountID)
		return err
	})

	return registered, err
}

// GetAccount returns the account with its reward projected to now
func (l *Ledger) GetAccount(accountID string) (*types.AccountInfo, error) {
	var info *types.AccountInfo
	err := l.store.View(func(tx *store.RTx) error {
		acc, err := l.getAccount(tx, accountID)
		if err != nil {
			return err
		}
		now, _, err := l.effectiveNow(tx)
		if err != nil {
			return err
		}
		newReward, err := l.accrued(acc.StakeBalance, acc.LastChangeCheckpoint, now)
		if err != nil {
			return err
		}

		info = &types.AccountInfo{
			AccountID:   accountID,
			Account:     acc,
			NewReward:   newReward,
			TotalReward: acc.PreReward.Add(newReward),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// GetAccountReward returns the reward owed to the account as of now
func (l *Ledger) GetAccountReward(accountID string) (sdkmath.Uint, error) {
	info, err := l.GetAccount(accountID)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	return info.TotalReward, nil
}

func (l *Ledger) IsPaused() (bool, error) {
	var paused bool
	err := l.store.View(func(tx *store.RTx) error {
		pause, err := tx.GetPauseState()
		if err != nil {
			return err
		}
		paused = pause.Paused
		return nil
	})

	return paused, err
}

func (l *Ledger) GetSaga(sagaID string) (*types.Saga, error) {
	var saga *types.Saga
	err := l.store.View(func(tx *store.RTx) error {
		var err error
		saga, err = l.getSaga(tx, sagaID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return saga, nil
}

func (l *Ledger) getSaga(tx *store.RTx, sagaID string) (*types.Saga, error) {
	saga, err := tx.GetSaga(sagaID)
	if errors.Is(err, store.ErrSagaNotFound) {
		return nil, errorsmod.Wrapf(ErrSagaNotFound, "saga %s", sagaID)
	}

	return saga, err
}

// PendingSagas returns the sagas whose transfer outcome is not known yet
func (l *Ledger) PendingSagas() ([]*types.Saga, error) {
	var sagas []*types.Saga
	err := l.store.View(func(tx *store.RTx) error {
		var err error
		sagas, err = tx.PendingSagas()
		return err
	})
	if err != nil {
		return nil, err
	}

	return sagas, nil
}
