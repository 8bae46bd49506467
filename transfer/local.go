package transfer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/types"
)

var _ TransferController = &LocalTransferController{}

// LocalTransferController settles every transfer in process. It stands in
// for the asset service in development setups.
type LocalTransferController struct {
	mu       sync.Mutex
	outcomes map[string]*types.TransferOutcome

	logger *zap.Logger
}

func NewLocalTransferController(logger *zap.Logger) *LocalTransferController {
	return &LocalTransferController{
		outcomes: make(map[string]*types.TransferOutcome),
		logger:   logger,
	}
}

func (tc *LocalTransferController) RequestTransfer(_ context.Context, req *types.TransferRequest) (*types.TransferOutcome, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if outcome, ok := tc.outcomes[req.ID]; ok {
		return outcome, nil
	}

	outcome := types.NewSucceededOutcome(req.ID)
	tc.outcomes[req.ID] = outcome

	tc.logger.Info("local transfer settled",
		zap.String("request_id", req.ID),
		zap.String("receiver", req.Receiver),
		zap.String("amount", req.Amount.String()),
		zap.String("memo", req.Memo),
	)

	return outcome, nil
}

func (tc *LocalTransferController) QueryTransferOutcome(_ context.Context, requestID string) (*types.TransferOutcome, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	outcome, ok := tc.outcomes[requestID]
	if !ok {
		return nil, ErrTransferUnknown
	}

	return outcome, nil
}

func (tc *LocalTransferController) Close() error {
	return nil
}
