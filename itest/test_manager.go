package e2etest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	stkcfg "github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/staking"
	"github.com/babylonchain/staking-ledger/staking/service"
	"github.com/babylonchain/staking-ledger/store"
	"github.com/babylonchain/staking-ledger/transfer"
)

var (
	eventuallyWaitTimeOut = 1 * time.Minute
	eventuallyPollTime    = 100 * time.Millisecond

	ownerID         = "owner"
	assetContractID = "asset-token"
)

type TestManager struct {
	AssetService *AssetServiceHandler
	Clock        *clock.Manual
	Config       *stkcfg.Config
	StakingPool  *staking.StakingPool
	APIServer    *service.APIServer

	db      kvdb.Backend
	tc      transfer.TransferController
	apiURL  string
	client  *http.Client
	baseDir string
}

func StartManager(t *testing.T) *TestManager {
	testDir, err := baseDir("stke2etest")
	require.NoError(t, err)

	logger := zap.NewNop()

	// 1. prepare the asset service the pool pays out through
	as := NewAssetServiceHandler(t)

	// 2. prepare config and ledger
	cfg := defaultStakingConfig(testDir, as.URL(), freePort(t))
	require.NoError(t, cfg.Validate())

	db, err := cfg.DatabaseConfig.GetDBBackend()
	require.NoError(t, err)
	st, err := store.NewLedgerStore(db)
	require.NoError(t, err)

	clk := clock.NewManual(0, 0)
	l, err := ledger.New(st, clk, ledger.Params{
		Rate:            cfg.RewardRate(),
		OwnerID:         cfg.OwnerID,
		AssetContractID: cfg.AssetContractID,
	}, logger)
	require.NoError(t, err)

	// 3. prepare the staking pool
	tc, err := transfer.NewTransferController(cfg.Transfer, logger)
	require.NoError(t, err)
	sp, err := staking.NewStakingPool(cfg, l, tc, logger)
	require.NoError(t, err)
	require.NoError(t, sp.Start())

	// 4. serve the API
	apiAddr, err := cfg.API.Address()
	require.NoError(t, err)
	api := service.NewAPIServer(apiAddr, cfg.API.WriteTimeout, sp, logger)
	go api.Start()

	tm := &TestManager{
		AssetService: as,
		Clock:        clk,
		Config:       cfg,
		StakingPool:  sp,
		APIServer:    api,
		db:           db,
		tc:           tc,
		apiURL:       "http://" + apiAddr,
		client:       &http.Client{Timeout: 10 * time.Second},
		baseDir:      testDir,
	}

	tm.WaitForServicesStart(t)

	return tm
}

func (tm *TestManager) WaitForServicesStart(t *testing.T) {
	require.Eventually(t, func() bool {
		resp, err := tm.client.Get(tm.apiURL + "/v1/pool")
		if err != nil {
			return false
		}
		resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	t.Logf("Staking pool API is started")
}

func (tm *TestManager) Stop(t *testing.T) {
	tm.APIServer.Stop()
	require.NoError(t, tm.StakingPool.Stop())
	require.NoError(t, tm.tc.Close())
	tm.AssetService.Stop()
	require.NoError(t, tm.db.Close())
	require.NoError(t, os.RemoveAll(tm.baseDir))
}

// Call sends a request to the API and decodes the answer into out
func (tm *TestManager) Call(t *testing.T, method, path, callerID, body string, out interface{}) int {
	req, err := http.NewRequest(method, tm.apiURL+path, strings.NewReader(body))
	require.NoError(t, err)
	if callerID != "" {
		req.Header.Set(service.CallerHeader, callerID)
	}

	resp, err := tm.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func (tm *TestManager) RegisterAndStake(t *testing.T, accountID string, amount uint64) {
	require.Equal(t, http.StatusCreated,
		tm.Call(t, http.MethodPost, "/v1/accounts/"+accountID+"/register", "", "", nil))

	body := fmt.Sprintf(`{"sender":%q,"amount":"%d"}`, accountID, amount)
	require.Equal(t, http.StatusOK,
		tm.Call(t, http.MethodPost, "/v1/transfers/notify", assetContractID, body, nil))
}

func (tm *TestManager) GetAccount(t *testing.T, accountID string) *service.AccountResponse {
	var acc service.AccountResponse
	require.Equal(t, http.StatusOK, tm.Call(t, http.MethodGet, "/v1/accounts/"+accountID, "", "", &acc))
	return &acc
}

func (tm *TestManager) GetPool(t *testing.T) *service.PoolResponse {
	var pool service.PoolResponse
	require.Equal(t, http.StatusOK, tm.Call(t, http.MethodGet, "/v1/pool", "", "", &pool))
	return &pool
}

// StartSaga posts a withdraw or harvest for the account and returns the
// saga token
func (tm *TestManager) StartSaga(t *testing.T, kind, accountID string) *service.SagaResponse {
	var saga service.SagaResponse
	require.Equal(t, http.StatusAccepted,
		tm.Call(t, http.MethodPost, "/v1/accounts/"+accountID+"/"+kind, accountID, "", &saga))
	require.Equal(t, kind, saga.Kind)
	return &saga
}

func (tm *TestManager) WaitForSagaState(t *testing.T, sagaID, state string) *service.SagaResponse {
	var saga service.SagaResponse
	require.Eventually(t, func() bool {
		if tm.Call(t, http.MethodGet, "/v1/sagas/"+sagaID, "", "", &saga) != http.StatusOK {
			return false
		}
		return saga.State == state
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	t.Logf("saga %s is %s", sagaID, state)

	return &saga
}

func defaultStakingConfig(homeDir, assetServiceURL string, apiPort int) *stkcfg.Config {
	cfg := stkcfg.DefaultConfigWithHomePath(homeDir)
	cfg.OwnerID = ownerID
	cfg.AssetContractID = assetContractID
	cfg.RecoveryInterval = 200 * time.Millisecond

	cfg.Transfer.Backend = stkcfg.TransferBackendHTTP
	cfg.Transfer.Endpoint = assetServiceURL
	cfg.Transfer.Timeout = 5 * time.Second
	cfg.Transfer.RetryDelay = 10 * time.Millisecond

	cfg.API.Port = apiPort

	return &cfg
}
