package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/babylonchain/staking-ledger/ledger"
	"github.com/babylonchain/staking-ledger/staking"
)

const (
	// CallerHeader names the account on whose behalf a command is sent
	CallerHeader = "X-Caller-ID"

	jsonContentType = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 16
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{ledger.ErrNotRegistered, http.StatusNotFound},
	{ledger.ErrSagaNotFound, http.StatusNotFound},
	{ledger.ErrAlreadyRegistered, http.StatusConflict},
	{ledger.ErrSagaInProgress, http.StatusConflict},
	{ledger.ErrSagaResolved, http.StatusConflict},
	{ledger.ErrPauseUnchanged, http.StatusConflict},
	{ledger.ErrUnauthorizedCaller, http.StatusForbidden},
	{ledger.ErrInsufficientStakeBalance, http.StatusUnprocessableEntity},
	{ledger.ErrZeroRewardOwed, http.StatusUnprocessableEntity},
	{ledger.ErrZeroUnstakeBalance, http.StatusUnprocessableEntity},
	{ledger.ErrZeroAmount, http.StatusUnprocessableEntity},
	{ledger.ErrInvalidAccountID, http.StatusUnprocessableEntity},
	{ledger.ErrPoolPaused, http.StatusLocked},
	{ledger.ErrWithdrawLocked, http.StatusLocked},
	{ledger.ErrExternalCallFailed, http.StatusBadGateway},
}

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func badRequest(cause error) error {
	return &httpError{cause: cause, status: http.StatusBadRequest}
}

// statusOf maps an error of a handler to the status it is answered with
func statusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}

	return http.StatusInternalServerError
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// APIServer serves the command and query surface of the staking pool
type APIServer struct {
	*httpServer

	sp     *staking.StakingPool
	logger *zap.Logger
}

func NewAPIServer(addr string, writeTimeout time.Duration, sp *staking.StakingPool, logger *zap.Logger) *APIServer {
	s := &APIServer{
		sp:     sp,
		logger: logger,
	}
	s.httpServer = newHTTPServer("api", addr, s.Handler(), writeTimeout, logger)

	return s
}

func (s *APIServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Get("/pool", s.wrap(s.getPool))
		r.Get("/pause", s.wrap(s.getPause))
		r.Get("/sagas/{id}", s.wrap(s.getSaga))

		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/", s.wrap(s.getAccount))
			r.Get("/reward", s.wrap(s.getReward))
			r.Get("/registered", s.wrap(s.getRegistered))
			r.Post("/register", s.wrap(s.register))
			r.Post("/unstake", s.wrap(s.unstake))
			r.Post("/withdraw", s.wrap(s.withdraw))
			r.Post("/harvest", s.wrap(s.harvest))
		})

		r.Post("/transfers/notify", s.wrap(s.notifyTransfer))

		r.Post("/admin/pause", s.wrap(s.pause))
		r.Post("/admin/resume", s.wrap(s.resume))
	})

	return r
}

func (s *APIServer) wrap(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}

		status := statusOf(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("failed to serve request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}

		resp := &ErrorResponse{Message: err.Error()}
		var sdkErr *errorsmod.Error
		if errors.As(err, &sdkErr) {
			resp.Code = sdkErr.ABCICode()
		}
		_ = writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, obj interface{}) error {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(obj)
}

// parseJSON decodes the request body in strict mode
func parseJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func parseAmount(s string) (sdkmath.Uint, error) {
	amount, err := sdkmath.ParseUint(s)
	if err != nil {
		return sdkmath.Uint{}, badRequest(fmt.Errorf("invalid amount %q: %w", s, err))
	}
	return amount, nil
}

func caller(r *http.Request) (string, error) {
	c := r.Header.Get(CallerHeader)
	if c == "" {
		return "", badRequest(fmt.Errorf("missing %s header", CallerHeader))
	}
	return c, nil
}

// accountCaller returns the account named in the path. Commands on an
// account may only be sent by the account itself.
func accountCaller(r *http.Request) (string, error) {
	c, err := caller(r)
	if err != nil {
		return "", err
	}
	id := chi.URLParam(r, "id")
	if c != id {
		return "", errorsmod.Wrapf(ledger.ErrUnauthorizedCaller, "%s cannot act on account %s", c, id)
	}
	return id, nil
}

func (s *APIServer) getAccount(w http.ResponseWriter, r *http.Request) error {
	info, err := s.sp.Ledger().GetAccount(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewAccountResponse(info))
}

func (s *APIServer) getReward(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	reward, err := s.sp.Ledger().GetAccountReward(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, &RewardResponse{AccountID: id, Reward: reward.String()})
}

func (s *APIServer) getRegistered(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	registered, err := s.sp.Ledger().IsRegistered(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, &RegisteredResponse{AccountID: id, Registered: registered})
}

func (s *APIServer) getPool(w http.ResponseWriter, _ *http.Request) error {
	info, err := s.sp.Ledger().GetPool()
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewPoolResponse(info))
}

func (s *APIServer) getPause(w http.ResponseWriter, _ *http.Request) error {
	state, err := s.sp.Ledger().GetPauseState()
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewPauseResponse(state))
}

func (s *APIServer) getSaga(w http.ResponseWriter, r *http.Request) error {
	saga, err := s.sp.Ledger().GetSaga(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewSagaResponse(saga))
}

func (s *APIServer) register(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if _, err := s.sp.Register(id); err != nil {
		return err
	}
	info, err := s.sp.Ledger().GetAccount(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, NewAccountResponse(info))
}

// notifyTransfer is called by the asset contract after it moved funds of
// the sender into the pool
func (s *APIServer) notifyTransfer(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req NotifyTransferRequest
	if err := parseJSON(r, &req); err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	if _, err := s.sp.Stake(c, req.Sender, amount); err != nil {
		return err
	}
	info, err := s.sp.Ledger().GetAccount(req.Sender)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewAccountResponse(info))
}

func (s *APIServer) unstake(w http.ResponseWriter, r *http.Request) error {
	id, err := accountCaller(r)
	if err != nil {
		return err
	}
	var req UnstakeRequest
	if err := parseJSON(r, &req); err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	if _, err := s.sp.Unstake(id, amount); err != nil {
		return err
	}
	info, err := s.sp.Ledger().GetAccount(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewAccountResponse(info))
}

func (s *APIServer) withdraw(w http.ResponseWriter, r *http.Request) error {
	id, err := accountCaller(r)
	if err != nil {
		return err
	}
	saga, err := s.sp.Withdraw(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, NewSagaResponse(saga))
}

func (s *APIServer) harvest(w http.ResponseWriter, r *http.Request) error {
	id, err := accountCaller(r)
	if err != nil {
		return err
	}
	saga, err := s.sp.Harvest(id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, NewSagaResponse(saga))
}

func (s *APIServer) pause(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	state, err := s.sp.Pause(c)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewPauseResponse(state))
}

func (s *APIServer) resume(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	state, err := s.sp.Resume(c)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, NewPauseResponse(state))
}
