package transfer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/types"
)

// TransferController moves funds out of the pool through the asset service.
// Requests are identified by the saga id and the service handles a repeated
// id as the same transfer.
type TransferController interface {
	// RequestTransfer issues the transfer and returns the outcome known when
	// the service answered, which may still be pending
	RequestTransfer(ctx context.Context, req *types.TransferRequest) (*types.TransferOutcome, error)

	// QueryTransferOutcome returns the current outcome of a transfer issued
	// before. ErrTransferUnknown is returned if the service never saw it.
	QueryTransferOutcome(ctx context.Context, requestID string) (*types.TransferOutcome, error)

	Close() error
}

func NewTransferController(cfg *config.TransferConfig, logger *zap.Logger) (TransferController, error) {
	var (
		tc  TransferController
		err error
	)
	switch cfg.Backend {
	case config.TransferBackendHTTP:
		tc, err = NewHTTPTransferController(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create asset service client: %w", err)
		}
	case config.TransferBackendLocal:
		tc = NewLocalTransferController(logger)
	default:
		return nil, fmt.Errorf("unsupported transfer backend %q", cfg.Backend)
	}

	return tc, err
}
