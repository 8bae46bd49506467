package service_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/clock"
	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/staking"
	"github.com/babylonchain/staking-ledger/staking/service"
	"github.com/babylonchain/staking-ledger/testutil"
	"github.com/babylonchain/staking-ledger/transfer"
)

const alice = "alice.stake"

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
	clk *clock.Manual
}

func newTestAPI(t *testing.T) *testAPI {
	clk := clock.NewManual(0, 0)
	l, _ := testutil.NewTestLedger(t, clk)

	cfg := config.DefaultConfigWithHomePath(t.TempDir())
	cfg.RecoveryInterval = time.Hour
	sp, err := staking.NewStakingPool(&cfg, l, transfer.NewLocalTransferController(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, sp.Start())
	t.Cleanup(func() {
		require.NoError(t, sp.Stop())
	})

	api := service.NewAPIServer("127.0.0.1:0", time.Second, sp, zap.NewNop())
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, clk: clk}
}

func (a *testAPI) do(method, path, callerID, body string, out interface{}) int {
	req, err := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	require.NoError(a.t, err)
	if callerID != "" {
		req.Header.Set(service.CallerHeader, callerID)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestAccountLifecycle(t *testing.T) {
	api := newTestAPI(t)

	var registered service.RegisteredResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/accounts/"+alice+"/registered", "", "", &registered))
	require.False(t, registered.Registered)

	var errResp service.ErrorResponse
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/accounts/"+alice, "", "", &errResp))
	require.Equal(t, uint32(2), errResp.Code)

	var acc service.AccountResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/accounts/"+alice+"/register", "", "", &acc))
	require.Equal(t, "0", acc.StakeBalance)
	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/v1/accounts/"+alice+"/register", "", "", nil))

	notify := `{"sender":"` + alice + `","amount":"1000000"}`
	require.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/transfers/notify", alice, notify, nil))
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/v1/transfers/notify", "", notify, nil))
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID,
		`{"sender":"`+alice+`","amount":"-5"}`, nil))
	require.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID,
		`{"sender":"`+alice+`","amount":"0"}`, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID, notify, &acc))
	require.Equal(t, "1000000", acc.StakeBalance)

	api.clk.SetHeight(1_000_000)

	var reward service.RewardResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/accounts/"+alice+"/reward", "", "", &reward))
	require.Equal(t, "7150", reward.Reward)

	var pool service.PoolResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/pool", "", "", &pool))
	require.Equal(t, "1000000", pool.TotalStakeBalance)
	require.Equal(t, uint64(1), pool.TotalStakerCount)
	require.Equal(t, "7150", pool.TotalReward)

	require.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/v1/accounts/"+alice+"/unstake", alice,
		`{"amount":"1000001"}`, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/accounts/"+alice+"/unstake", alice,
		`{"amount":"250000"}`, &acc))
	require.Equal(t, "250000", acc.UnstakeBalance)
	require.Equal(t, uint64(1), acc.UnstakeUnlockEpoch)
	require.NotEmpty(t, acc.UnstakeStartTime)

	require.Equal(t, http.StatusLocked, api.do(http.MethodPost, "/v1/accounts/"+alice+"/withdraw", alice, "", nil))
}

func TestTransfersAreSettled(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/accounts/"+alice+"/register", "", "", nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID,
		`{"sender":"`+alice+`","amount":"1000000"}`, nil))
	api.clk.SetHeight(1_000_000)

	var saga service.SagaResponse
	require.Equal(t, http.StatusAccepted, api.do(http.MethodPost, "/v1/accounts/"+alice+"/harvest", alice, "", &saga))
	require.Equal(t, "harvest", saga.Kind)
	require.Equal(t, "REQUESTED", saga.State)
	require.Equal(t, "7150", saga.Amount)

	require.Eventually(t, func() bool {
		var s service.SagaResponse
		api.do(http.MethodGet, "/v1/sagas/"+saga.ID, "", "", &s)
		return s.State == "COMMITTED"
	}, 5*time.Second, 10*time.Millisecond)

	var pool service.PoolResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/pool", "", "", &pool))
	require.Equal(t, "7150", pool.TotalPaidRewardBalance)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/accounts/"+alice+"/unstake", alice,
		`{"amount":"1000000"}`, nil))
	api.clk.SetEpoch(1)
	require.Equal(t, http.StatusAccepted, api.do(http.MethodPost, "/v1/accounts/"+alice+"/withdraw", alice, "", &saga))
	require.Equal(t, "withdraw", saga.Kind)
	require.Equal(t, "1000000", saga.Amount)

	require.Eventually(t, func() bool {
		var s service.SagaResponse
		api.do(http.MethodGet, "/v1/sagas/"+saga.ID, "", "", &s)
		return s.State == "COMMITTED"
	}, 5*time.Second, 10*time.Millisecond)

	var acc service.AccountResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/accounts/"+alice, "", "", &acc))
	require.Equal(t, "0", acc.UnstakeBalance)
	require.Equal(t, "0", acc.StakeBalance)

	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/sagas/unknown", "", "", nil))
}

func TestAccountCommandsRequireTheAccountAsCaller(t *testing.T) {
	api := newTestAPI(t)
	mallory := "mallory.stake"

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/accounts/"+alice+"/register", "", "", nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID,
		`{"sender":"`+alice+`","amount":"1000000"}`, nil))
	api.clk.SetHeight(1_000_000)

	var errResp service.ErrorResponse
	require.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/accounts/"+alice+"/unstake", mallory,
		`{"amount":"1000000"}`, &errResp))
	require.Equal(t, uint32(5), errResp.Code)
	require.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/accounts/"+alice+"/harvest", mallory, "", nil))
	require.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/accounts/"+alice+"/withdraw", mallory, "", nil))

	for _, op := range []string{"unstake", "harvest", "withdraw"} {
		require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/v1/accounts/"+alice+"/"+op, "",
			`{"amount":"1"}`, nil))
	}

	var acc service.AccountResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/accounts/"+alice, "", "", &acc))
	require.Equal(t, "1000000", acc.StakeBalance)
	require.Equal(t, "0", acc.UnstakeBalance)
	require.Equal(t, "7150", acc.TotalReward)

	var pool service.PoolResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/pool", "", "", &pool))
	require.Equal(t, "0", pool.TotalPaidRewardBalance)
}

func TestPauseEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.clk.SetHeight(500)

	require.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/admin/pause", alice, "", nil))

	var state service.PauseResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/admin/pause", testutil.OwnerID, "", &state))
	require.True(t, state.Paused)
	require.Equal(t, uint64(500), state.PauseCheckpoint)
	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/v1/admin/pause", testutil.OwnerID, "", nil))

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/accounts/"+alice+"/register", "", "", nil))
	require.Equal(t, http.StatusLocked, api.do(http.MethodPost, "/v1/transfers/notify", testutil.AssetContractID,
		`{"sender":"`+alice+`","amount":"10"}`, nil))

	api.clk.SetHeight(800)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/admin/resume", testutil.OwnerID, "", &state))
	require.False(t, state.Paused)
	require.Equal(t, uint64(300), state.PausedOffset)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/pause", "", "", &state))
	require.False(t, state.Paused)
	require.Equal(t, uint64(300), state.PausedOffset)

	// a second pause is checkpointed in effective height
	api.clk.SetHeight(1_000)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/admin/pause", testutil.OwnerID, "", &state))
	require.Equal(t, uint64(700), state.PauseCheckpoint)
	api.clk.SetHeight(1_100)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/admin/resume", testutil.OwnerID, "", &state))
	require.Equal(t, uint64(400), state.PausedOffset)
}
