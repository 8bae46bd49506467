package e2etest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
)

type transferRequest struct {
	ID       string `json:"id"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
	Memo     string `json:"memo,omitempty"`
}

type callResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type transferOutcome struct {
	RequestID string       `json:"request_id"`
	Results   []callResult `json:"results"`
}

// AssetServiceHandler runs an in-memory asset transfer service. Requests are
// idempotent on their id, like the real service.
type AssetServiceHandler struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	outcomes  map[string]*transferOutcome
	delivered map[string]sdkmath.Uint
	// transfers to reject with a FAILED outcome
	failNext int
	// transfers to execute while answering with an error, so the caller
	// does not learn the outcome
	dropNext int
}

func NewAssetServiceHandler(t *testing.T) *AssetServiceHandler {
	h := &AssetServiceHandler{
		t:         t,
		outcomes:  make(map[string]*transferOutcome),
		delivered: make(map[string]sdkmath.Uint),
	}

	r := chi.NewRouter()
	r.Post("/v1/transfers", h.requestTransfer)
	r.Get("/v1/transfers/{id}", h.queryTransfer)
	h.srv = httptest.NewServer(r)

	return h
}

func (h *AssetServiceHandler) URL() string {
	return h.srv.URL
}

func (h *AssetServiceHandler) Stop() {
	h.srv.Close()
}

func (h *AssetServiceHandler) FailNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext = n
}

func (h *AssetServiceHandler) DropNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropNext = n
}

// Delivered returns the amount the service has moved to receiver
func (h *AssetServiceHandler) Delivered(receiver string) sdkmath.Uint {
	h.mu.Lock()
	defer h.mu.Unlock()

	if amount, ok := h.delivered[receiver]; ok {
		return amount
	}
	return sdkmath.ZeroUint()
}

func (h *AssetServiceHandler) requestTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := sdkmath.ParseUint(req.Amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	outcome, ok := h.outcomes[req.ID]
	if !ok {
		outcome = &transferOutcome{RequestID: req.ID}
		if h.failNext > 0 {
			h.failNext--
			outcome.Results = []callResult{{Status: "FAILED", Reason: "receiver rejected the transfer"}}
		} else {
			outcome.Results = []callResult{{Status: "SUCCEEDED"}}
			delivered, ok := h.delivered[req.Receiver]
			if !ok {
				delivered = sdkmath.ZeroUint()
			}
			h.delivered[req.Receiver] = delivered.Add(amount)
		}
		h.outcomes[req.ID] = outcome
	}
	drop := h.dropNext > 0
	if drop {
		h.dropNext--
	}
	h.mu.Unlock()

	if drop {
		http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
		return
	}
	h.writeOutcome(w, outcome)
}

func (h *AssetServiceHandler) queryTransfer(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	outcome, ok := h.outcomes[chi.URLParam(r, "id")]
	h.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h.writeOutcome(w, outcome)
}

func (h *AssetServiceHandler) writeOutcome(w http.ResponseWriter, outcome *transferOutcome) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		h.t.Logf("failed to write transfer outcome: %v", err)
	}
}
