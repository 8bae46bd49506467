package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/transfer"
	"github.com/babylonchain/staking-ledger/types"
)

// StakingPool runs the ledger against the asset service. Ledger operations
// are forwarded as they are, and every saga started here gets its transfer
// issued in the background. Sagas whose outcome could not be learned are
// picked up by the recovery loop.
type StakingPool struct {
	isStarted *atomic.Bool

	// loops
	wg   sync.WaitGroup
	quit chan struct{}

	// transfers in flight, keyed by saga id
	sagas    conc.WaitGroup
	inFlight sync.Map
	running  *atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	ledger *ledger.Ledger
	tc     transfer.TransferController

	config *config.Config
	logger *zap.Logger
}

func NewStakingPool(
	cfg *config.Config,
	l *ledger.Ledger,
	tc transfer.TransferController,
	logger *zap.Logger,
) (*StakingPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &StakingPool{
		isStarted: atomic.NewBool(false),
		quit:      make(chan struct{}),
		running:   atomic.NewInt64(0),
		ctx:       ctx,
		cancel:    cancel,
		ledger:    l,
		tc:        tc,
		config:    cfg,
		logger:    logger,
	}, nil
}

func (sp *StakingPool) Config() *config.Config {
	return sp.config
}

func (sp *StakingPool) Ledger() *ledger.Ledger {
	return sp.ledger
}

// InFlightTransfers returns the number of transfer calls not finished yet
func (sp *StakingPool) InFlightTransfers() int64 {
	return sp.running.Load()
}

func (sp *StakingPool) Register(accountID string) (*types.Account, error) {
	acc, err := sp.ledger.Register(accountID)
	recordLedgerOperation("register", err)
	return acc, err
}

// Stake handles a transfer notification of the asset contract named by caller
func (sp *StakingPool) Stake(caller, accountID string, amount sdkmath.Uint) (*types.Account, error) {
	acc, err := sp.ledger.Stake(caller, accountID, amount)
	recordLedgerOperation("stake", err)
	return acc, err
}

func (sp *StakingPool) Unstake(accountID string, amount sdkmath.Uint) (*types.Account, error) {
	acc, err := sp.ledger.Unstake(accountID, amount)
	recordLedgerOperation("unstake", err)
	return acc, err
}

func (sp *StakingPool) Pause(caller string) (*types.PauseState, error) {
	state, err := sp.ledger.Pause(caller)
	recordLedgerOperation("pause", err)
	return state, err
}

func (sp *StakingPool) Resume(caller string) (*types.PauseState, error) {
	state, err := sp.ledger.Resume(caller)
	recordLedgerOperation("resume", err)
	return state, err
}

// Withdraw starts a withdraw saga and issues its transfer in the background.
// The returned saga is still REQUESTED.
func (sp *StakingPool) Withdraw(accountID string) (*types.Saga, error) {
	saga, err := sp.ledger.BeginWithdraw(accountID)
	recordLedgerOperation("withdraw", err)
	if err != nil {
		return nil, err
	}

	sp.dispatch(saga)

	return saga, nil
}

// Harvest starts a harvest saga and issues its transfer in the background.
// The returned saga is still REQUESTED.
func (sp *StakingPool) Harvest(accountID string) (*types.Saga, error) {
	saga, err := sp.ledger.BeginHarvest(accountID)
	recordLedgerOperation("harvest", err)
	if err != nil {
		return nil, err
	}

	sp.dispatch(saga)

	return saga, nil
}

func (sp *StakingPool) dispatch(saga *types.Saga) {
	sagasStarted.WithLabelValues(saga.Kind.String()).Inc()

	if !sp.track(saga) {
		return
	}
	sp.sagas.Go(func() {
		defer sp.untrack(saga)
		sp.settle(saga, func(ctx context.Context) (*types.TransferOutcome, error) {
			return sp.requestTransfer(ctx, saga)
		})
	})
}

// track marks the saga as handled, false if it is handled already
func (sp *StakingPool) track(saga *types.Saga) bool {
	if _, loaded := sp.inFlight.LoadOrStore(saga.ID, struct{}{}); loaded {
		return false
	}
	sp.running.Inc()
	inFlightTransfers.Inc()

	return true
}

func (sp *StakingPool) untrack(saga *types.Saga) {
	sp.inFlight.Delete(saga.ID)
	sp.running.Dec()
	inFlightTransfers.Dec()
}

// settle obtains the outcome of the saga with call and resolves the saga
// with it. An unknown or pending outcome leaves the saga pending.
func (sp *StakingPool) settle(saga *types.Saga, call func(ctx context.Context) (*types.TransferOutcome, error)) {
	ctx, cancel := context.WithTimeout(sp.ctx, sp.config.Transfer.Timeout)
	defer cancel()

	outcome, err := call(ctx)
	if err != nil {
		sp.logger.Warn("transfer outcome unknown, the saga stays pending",
			zap.String("saga", saga.ID),
			zap.String("kind", saga.Kind.String()),
			zap.Error(err),
		)
		return
	}
	if outcome.IsPending() {
		sp.logger.Debug("transfer is not settled yet",
			zap.String("saga", saga.ID),
		)
		return
	}

	sp.resolve(saga, outcome)
}

func (sp *StakingPool) requestTransfer(ctx context.Context, saga *types.Saga) (*types.TransferOutcome, error) {
	start := time.Now()
	outcome, err := sp.tc.RequestTransfer(ctx, saga.TransferRequest())
	if err != nil {
		transferErrors.WithLabelValues("request").Inc()
		return nil, err
	}
	timedTransferLag.Observe(time.Since(start).Seconds())

	return outcome, nil
}

// queryOutcome asks for the outcome of a saga found pending. A transfer the
// asset service never saw is issued again under the same id.
func (sp *StakingPool) queryOutcome(ctx context.Context, saga *types.Saga) (*types.TransferOutcome, error) {
	outcome, err := sp.tc.QueryTransferOutcome(ctx, saga.ID)
	if errors.Is(err, transfer.ErrTransferUnknown) {
		sp.logger.Info("transfer never reached the asset service, requesting it again",
			zap.String("saga", saga.ID),
		)
		return sp.requestTransfer(ctx, saga)
	}
	if err != nil {
		transferErrors.WithLabelValues("query").Inc()
		return nil, err
	}

	return outcome, nil
}

func (sp *StakingPool) resolve(saga *types.Saga, outcome *types.TransferOutcome) {
	var resolved *types.Saga
	err := retry.Do(func() error {
		var err error
		resolved, err = sp.ledger.Resolve(saga.ID, outcome)
		return err
	}, RtyAtt, RtyDel, RtyErr,
		retry.RetryIf(func(err error) bool { return !isUnrecoverable(err) }),
		retry.OnRetry(func(n uint, err error) {
			sp.logger.Debug(
				"failed to resolve saga",
				zap.String("saga", saga.ID),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", RtyAttNum),
				zap.Error(err),
			)
		}))

	switch {
	case err == nil:
		sp.logger.Info("transfer succeeded",
			zap.String("saga", saga.ID),
			zap.String("kind", saga.Kind.String()),
			zap.String("account", saga.AccountID),
			zap.String("amount", saga.Amount.String()),
		)
	case errors.Is(err, ledger.ErrExternalCallFailed):
		sp.logger.Warn("transfer failed, the ledger was rolled back",
			zap.String("saga", saga.ID),
			zap.String("kind", saga.Kind.String()),
			zap.String("account", saga.AccountID),
			zap.Error(err),
		)
	case errors.Is(err, ledger.ErrInvariantViolation):
		transferErrors.WithLabelValues("invariant").Inc()
		sp.logger.Error("transfer outcome violates ledger invariants, the saga stays pending",
			zap.String("saga", saga.ID),
			zap.String("kind", saga.Kind.String()),
			zap.Reflect("outcome", outcome),
			zap.Error(err),
		)
		return
	case errors.Is(err, ledger.ErrSagaResolved):
		sp.logger.Debug("saga was resolved concurrently", zap.String("saga", saga.ID))
		return
	default:
		sp.logger.Error("failed to resolve saga",
			zap.String("saga", saga.ID),
			zap.Error(err),
		)
		return
	}

	now := time.Now()
	metricsTimeKeeper.SetPreviousResolution(&now)
	sagasResolved.WithLabelValues(resolved.Kind.String(), resolved.State.String()).Inc()
}

// RecoverPendingSagas looks up the outcome of every pending saga that is not
// being handled already. It returns once all lookups are finished.
func (sp *StakingPool) RecoverPendingSagas() error {
	sagas, err := sp.ledger.PendingSagas()
	if err != nil {
		return fmt.Errorf("failed to list pending sagas: %w", err)
	}

	now := time.Now()
	metricsTimeKeeper.SetPreviousScan(&now)

	var wg conc.WaitGroup
	for _, s := range sagas {
		saga := s
		if !sp.track(saga) {
			continue
		}
		wg.Go(func() {
			defer sp.untrack(saga)
			sp.settle(saga, func(ctx context.Context) (*types.TransferOutcome, error) {
				return sp.queryOutcome(ctx, saga)
			})
		})
	}
	wg.Wait()

	return nil
}

func (sp *StakingPool) sagaRecoveryLoop() {
	defer sp.wg.Done()

	interval := sp.config.RecoveryInterval
	recoveryTicker := time.NewTicker(interval)

	sp.logger.Info("starting saga recovery loop",
		zap.Float64("interval seconds", interval.Seconds()))

	for {
		select {
		case <-recoveryTicker.C:
			if err := sp.RecoverPendingSagas(); err != nil {
				sp.logger.Error("failed to recover pending sagas", zap.Error(err))
			}
		case <-sp.quit:
			recoveryTicker.Stop()
			sp.logger.Debug("exiting saga recovery loop")
			return
		}
	}
}

func (sp *StakingPool) metricsUpdateLoop() {
	defer sp.wg.Done()

	interval := sp.config.Metrics.UpdateInterval
	sp.logger.Info("starting metrics update loop",
		zap.Float64("interval seconds", interval.Seconds()))
	updateTicker := time.NewTicker(interval)

	for {
		select {
		case <-updateTicker.C:
			metricsTimeKeeper.UpdatePrometheusMetrics()
			if err := sp.updatePoolMetrics(); err != nil {
				sp.logger.Debug("failed to update pool metrics", zap.Error(err))
			}
		case <-sp.quit:
			updateTicker.Stop()
			sp.logger.Info("exiting metrics update loop")
			return
		}
	}
}

func (sp *StakingPool) updatePoolMetrics() error {
	info, err := sp.ledger.GetPool()
	if err != nil {
		return err
	}
	sagas, err := sp.ledger.PendingSagas()
	if err != nil {
		return err
	}

	balance, _ := new(big.Float).SetInt(info.Pool.TotalStakeBalance.BigInt()).Float64()
	totalStakeBalance.Set(balance)
	totalStakers.Set(float64(info.Pool.TotalStakerCount))
	pendingSagas.Set(float64(len(sagas)))
	if info.Paused {
		poolPaused.Set(1)
	} else {
		poolPaused.Set(0)
	}

	return nil
}

func recordLedgerOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	ledgerOperations.WithLabelValues(op, result).Inc()
}

func (sp *StakingPool) Start() error {
	if sp.isStarted.Swap(true) {
		return fmt.Errorf("the staking pool is already started")
	}

	sp.logger.Info("Starting staking pool")

	sp.wg.Add(2)
	go sp.sagaRecoveryLoop()
	go sp.metricsUpdateLoop()

	return nil
}

// Stop ends the loops and waits for the transfers in flight. Sagas left
// pending are recovered on the next start.
func (sp *StakingPool) Stop() error {
	if !sp.isStarted.Swap(false) {
		return fmt.Errorf("the staking pool has already stopped")
	}

	sp.logger.Info("Stopping staking pool")

	close(sp.quit)
	sp.wg.Wait()
	sp.sagas.Wait()
	sp.cancel()

	sp.logger.Debug("Staking pool successfully stopped")

	return nil
}
