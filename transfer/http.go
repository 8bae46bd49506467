package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/config"
	"github.com/babylonchain/staking-ledger/types"
)

const transfersPath = "/v1/transfers"

var _ TransferController = &HTTPTransferController{}

// HTTPTransferController talks JSON to an asset service over HTTP
type HTTPTransferController struct {
	endpoint   string
	httpClient *http.Client
	cfg        *config.TransferConfig
	logger     *zap.Logger
}

func NewHTTPTransferController(cfg *config.TransferConfig, logger *zap.Logger) (*HTTPTransferController, error) {
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}

	return &HTTPTransferController{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}, nil
}

type transferRequestJSON struct {
	ID       string `json:"id"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
	Memo     string `json:"memo,omitempty"`
}

type callResultJSON struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type transferOutcomeJSON struct {
	RequestID string           `json:"request_id"`
	Results   []callResultJSON `json:"results"`
}

func newTransferRequestJSON(req *types.TransferRequest) *transferRequestJSON {
	return &transferRequestJSON{
		ID:       req.ID,
		Receiver: req.Receiver,
		Amount:   req.Amount.String(),
		Memo:     req.Memo,
	}
}

func (o *transferOutcomeJSON) toOutcome() (*types.TransferOutcome, error) {
	results := make([]types.CallResult, 0, len(o.Results))
	for _, r := range o.Results {
		status, err := types.NewCallStatus(r.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		results = append(results, types.CallResult{Status: status, Reason: r.Reason})
	}

	return &types.TransferOutcome{
		RequestID: o.RequestID,
		Results:   results,
	}, nil
}

// RequestTransfer posts the transfer once. A transport error leaves the
// outcome unknown and the caller has to query it later.
func (tc *HTTPTransferController) RequestTransfer(ctx context.Context, req *types.TransferRequest) (*types.TransferOutcome, error) {
	outcome, err := tc.do(ctx, http.MethodPost, tc.endpoint+transfersPath, newTransferRequestJSON(req))
	if err != nil {
		return nil, fmt.Errorf("failed to request transfer %s: %w", req.ID, err)
	}

	tc.logger.Debug("transfer requested",
		zap.String("request_id", req.ID),
		zap.String("receiver", req.Receiver),
		zap.String("amount", req.Amount.String()),
	)

	return outcome, nil
}

func (tc *HTTPTransferController) QueryTransferOutcome(ctx context.Context, requestID string) (*types.TransferOutcome, error) {
	u := tc.endpoint + transfersPath + "/" + url.PathEscape(requestID)

	var outcome *types.TransferOutcome
	if err := retry.Do(func() error {
		var err error
		outcome, err = tc.do(ctx, http.MethodGet, u, nil)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(tc.cfg.MaxRetries),
		retry.Delay(tc.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			tc.logger.Debug(
				"failed to query transfer outcome",
				zap.String("request_id", requestID),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", tc.cfg.MaxRetries),
				zap.Error(err),
			)
		})); err != nil {
		return nil, fmt.Errorf("failed to query transfer %s: %w", requestID, err)
	}

	return outcome, nil
}

func (tc *HTTPTransferController) do(ctx context.Context, method, u string, body interface{}) (*types.TransferOutcome, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrTransferUnknown
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(respBody))}
	}

	var decoded transferOutcomeJSON
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return decoded.toOutcome()
}

func (tc *HTTPTransferController) Close() error {
	tc.httpClient.CloseIdleConnections()
	return nil
}
