package service

import (
	"fmt"

	"github.com/lightningnetwork/lnd/signal"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/staking"
)

// StakingServer is the main daemon construct of the staking pool
type StakingServer struct {
	started *atomic.Bool

	sp *staking.StakingPool

	logger *zap.Logger

	interceptor signal.Interceptor
}

func NewStakingServer(l *zap.Logger, sp *staking.StakingPool, sig signal.Interceptor) *StakingServer {
	return &StakingServer{
		started:     atomic.NewBool(false),
		logger:      l,
		sp:          sp,
		interceptor: sig,
	}
}

// RunUntilShutdown runs the staking pool, its API and the Prometheus server
// until a signal is received to shut down the process
func (s *StakingServer) RunUntilShutdown() error {
	if s.started.Swap(true) {
		return nil
	}

	cfg := s.sp.Config()
	promAddr, err := cfg.Metrics.Address()
	if err != nil {
		return err
	}
	apiAddr, err := cfg.API.Address()
	if err != nil {
		return err
	}

	ps := NewPrometheusServer(promAddr, s.logger)
	api := NewAPIServer(apiAddr, cfg.API.WriteTimeout, s.sp, s.logger)

	if err := s.sp.Start(); err != nil {
		return fmt.Errorf("failed to start staking pool: %w", err)
	}

	defer func() {
		api.Stop()
		s.logger.Info("Shutdown API server complete")
		ps.Stop()
		s.logger.Info("Shutdown Prometheus server complete")
		if err := s.sp.Stop(); err != nil {
			s.logger.Error("failed to stop the staking pool", zap.Error(err))
			return
		}
		s.logger.Info("Shutdown staking pool complete")
	}()

	go ps.Start()
	go api.Start()

	s.logger.Info("Staking pool daemon is fully active!")

	// Wait for shutdown signal from either a graceful server stop or from
	// the interrupt handler.
	<-s.interceptor.ShutdownChannel()

	return nil
}
