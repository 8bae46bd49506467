package transfer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/transfer"
	"github.com/babylonchain/staking-ledger/types"
)

func newHTTPController(t *testing.T, endpoint string) transfer.TransferController {
	cfg := config.DefaultTransferConfig()
	cfg.Backend = config.TransferBackendHTTP
	cfg.Endpoint = endpoint
	cfg.MaxRetries = 3
	cfg.RetryDelay = time.Millisecond

	tc, err := transfer.NewTransferController(&cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, tc.Close())
	})

	return tc
}

func TestHTTPRequestTransfer(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_, _ = w.Write([]byte(`{"request_id":"saga-1","results":[{"status":"FAILED","reason":"frozen"}]}`))
	}))
	defer srv.Close()

	tc := newHTTPController(t, srv.URL+"/")
	outcome, err := tc.RequestTransfer(context.Background(), &types.TransferRequest{
		ID:       "saga-1",
		Receiver: "alice.stake",
		Amount:   sdkmath.NewUint(7150),
		Memo:     types.SagaHarvest.Memo(),
	})
	require.NoError(t, err)

	require.Equal(t, "saga-1", received["id"])
	require.Equal(t, "alice.stake", received["receiver"])
	require.Equal(t, "7150", received["amount"])
	require.Equal(t, "staking pool harvest", received["memo"])

	require.Equal(t, "saga-1", outcome.RequestID)
	require.Len(t, outcome.Results, 1)
	require.Equal(t, types.CallFailed, outcome.Results[0].Status)
	require.Equal(t, "frozen", outcome.Results[0].Reason)
	require.True(t, outcome.IsFinal())
}

func TestHTTPQueryRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/transfers/saga-2", r.URL.Path)
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"request_id":"saga-2","results":[{"status":"SUCCEEDED"}]}`))
	}))
	defer srv.Close()

	tc := newHTTPController(t, srv.URL)
	outcome, err := tc.QueryTransferOutcome(context.Background(), "saga-2")
	require.NoError(t, err)
	require.Equal(t, types.CallSucceeded, outcome.Results[0].Status)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPQueryStopsOnUnknownTransfer(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tc := newHTTPController(t, srv.URL)
	_, err := tc.QueryTransferOutcome(context.Background(), "saga-3")
	require.ErrorIs(t, err, transfer.ErrTransferUnknown)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPMalformedOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"request_id":"saga-4","results":[{"status":"MAYBE"}]}`))
	}))
	defer srv.Close()

	tc := newHTTPController(t, srv.URL)
	_, err := tc.QueryTransferOutcome(context.Background(), "saga-4")
	require.ErrorIs(t, err, transfer.ErrMalformedResponse)
}

func TestLocalTransferController(t *testing.T) {
	cfg := config.DefaultTransferConfig()
	tc, err := transfer.NewTransferController(&cfg, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = tc.QueryTransferOutcome(ctx, "saga-5")
	require.ErrorIs(t, err, transfer.ErrTransferUnknown)

	outcome, err := tc.RequestTransfer(ctx, &types.TransferRequest{
		ID:       "saga-5",
		Receiver: "bob.stake",
		Amount:   sdkmath.NewUint(1),
	})
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	require.Equal(t, types.CallSucceeded, outcome.Results[0].Status)

	queried, err := tc.QueryTransferOutcome(ctx, "saga-5")
	require.NoError(t, err)
	require.Equal(t, outcome, queried)
}

func TestUnsupportedBackend(t *testing.T) {
	cfg := config.DefaultTransferConfig()
	cfg.Backend = "grpc"
	_, err := transfer.NewTransferController(&cfg, zap.NewNop())
	require.Error(t, err)
}
