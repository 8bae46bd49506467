package main

import (
	"fmt"

	"github.com/lightningnetwork/lnd/signal"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	stkcfg "github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/log"
	"github.com/babylonchain/staking-ledger/staking"
	stksrv "github.com/babylonchain/staking-ledger/staking/service"
	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/transfer"
)

var startCommand = cli.Command{
	Name:        "start",
	Usage:       "Start the Staking Pool Daemon",
	Description: "Start the Staking Pool Daemon. The home directory should be initialized beforehand",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  homeFlag,
			Usage: "The path to the staking pool home directory",
			Value: stkcfg.DefaultStakingDir,
		},
	},
	Action: start,
}

func start(ctx *cli.Context) error {
	homePath, err := homePathFrom(ctx)
	if err != nil {
		return err
	}

	cfg, err := stkcfg.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	logger, err := log.NewRootLoggerWithFile(stkcfg.LogFile(homePath), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to load the logger: %w", err)
	}

	l, closeDB, err := openLedger(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("failed to close the ledger database", zap.Error(err))
		}
	}()

	tc, err := transfer.NewTransferController(cfg.Transfer, logger)
	if err != nil {
		return fmt.Errorf("failed to create the transfer controller: %w", err)
	}
	defer func() {
		if err := tc.Close(); err != nil {
			logger.Error("failed to close the transfer controller", zap.Error(err))
		}
	}()

	sp, err := staking.NewStakingPool(cfg, l, tc, logger)
	if err != nil {
		return fmt.Errorf("failed to create the staking pool: %w", err)
	}

	// Hook interceptor for os signals.
	shutdownInterceptor, err := signal.Intercept()
	if err != nil {
		return err
	}

	srv := stksrv.NewStakingServer(logger, sp, shutdownInterceptor)

	return srv.RunUntilShutdown()
}

// openLedger opens the database under the configured data dir and the
// ledger on top of it
func openLedger(cfg *stkcfg.Config, logger *zap.Logger) (*ledger.Ledger, func() error, error) {
	genesis, err := cfg.Clock.GenesisTime()
	if err != nil {
		return nil, nil, err
	}
	clk, err := clock.NewBlockClock(genesis, cfg.Clock.BlockInterval, cfg.Clock.EpochLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create the block clock: %w", err)
	}

	db, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open the ledger database: %w", err)
	}

	st, err := store.NewLedgerStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to initialize the ledger store: %w", err)
	}

	l, err := ledger.New(st, clk, ledger.Params{
		Rate:            cfg.RewardRate(),
		OwnerID:         cfg.OwnerID,
		AssetContractID: cfg.AssetContractID,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return l, db.Close, nil
}
