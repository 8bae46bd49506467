package ledger

import (
	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/types"
)

// Pause freezes the reward clock of every account and the pool at the
// current effective height
func (l *Ledger) Pause(caller string) (*types.PauseState, error) {
	return l.setPaused(caller, true)
}

// Resume restarts the reward clock from the frozen height. The blocks spent
// paused are skipped, so they never earn reward.
func (l *Ledger) Resume(caller string) (*types.PauseState, error) {
	return l.setPaused(caller, false)
}

func (l *Ledger) setPaused(caller string, paused bool) (*types.PauseState, error) {
	if caller != l.params.OwnerID {
		return nil, errorsmod.Wrapf(ErrUnauthorizedCaller, "%s is not the owner", caller)
	}

	var state *types.PauseState
	if err := l.store.Update(func(tx *store.RwTx) error {
		var err error
		state, err = tx.GetPauseState()
		if err != nil {
			return err
		}
		if state.Paused == paused {
			return ErrPauseUnchanged
		}

		height := l.clock.BlockHeight()
		if paused {
			state.PauseCheckpoint = state.EffectiveNow(height)
		} else {
			state.PausedOffset = height - state.PauseCheckpoint
		}
		state.Paused = paused

		return tx.PutPauseState(state)
	}); err != nil {
		return nil, err
	}

	l.logger.Info("pool pause state changed",
		zap.Bool("paused", state.Paused),
		zap.Uint64("pause_checkpoint", state.PauseCheckpoint),
		zap.Uint64("paused_offset", state.PausedOffset),
	)

	return state, nil
}

func (l *Ledger) GetPauseState() (*types.PauseState, error) {
	var state *types.PauseState
	err := l.store.View(func(tx *store.RTx) error {
		var err error
		state, err = tx.GetPauseState()
		return err
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}
