package testutil

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/reward"
	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/testutil/mocks"
)

const (
	OwnerID         = "owner"
	AssetContractID = "asset-token"
)

func DefaultLedgerParams() ledger.Params {
	return ledger.Params{
		Rate:            reward.DefaultRate(),
		OwnerID:         OwnerID,
		AssetContractID: AssetContractID,
	}
}

// NewTestLedgerStore opens a ledger store on a bolt database under a
// temporary directory, closed when the test ends
func NewTestLedgerStore(t testing.TB) *store.LedgerStore {
	cfg := config.DefaultDBConfigWithHomePath(t.TempDir())
	db, err := cfg.GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	st, err := store.NewLedgerStore(db)
	require.NoError(t, err)

	return st
}

// NewTestLedger returns a ledger with the default params driven by clk
func NewTestLedger(t testing.TB, clk clock.Source) (*ledger.Ledger, *store.LedgerStore) {
	st := NewTestLedgerStore(t)
	l, err := ledger.New(st, clk, DefaultLedgerParams(), zap.NewNop())
	require.NoError(t, err)

	return l, st
}

func PrepareMockedTransferController(t *testing.T) *mocks.MockTransferController {
	ctl := gomock.NewController(t)
	mockTransferController := mocks.NewMockTransferController(ctl)

	mockTransferController.EXPECT().Close().Return(nil).AnyTimes()

	return mockTransferController
}
