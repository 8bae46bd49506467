package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// httpServer holds the listen and shutdown logic of the daemon's servers
type httpServer struct {
	name   string
	svr    *http.Server
	logger *zap.Logger
}

func newHTTPServer(name, addr string, handler http.Handler, writeTimeout time.Duration, logger *zap.Logger) *httpServer {
	return &httpServer{
		name: name,
		svr: &http.Server{
			Handler:           handler,
			Addr:              addr,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       30 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
		},
		logger: logger.With(zap.String("server", name)),
	}
}

// Start blocks until the server is stopped
func (s *httpServer) Start() {
	s.logger.Info("Starting server", zap.String("address", s.svr.Addr))

	if err := s.svr.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.logger.Fatal("failed to start server", zap.Error(err))
	}
}

func (s *httpServer) Stop() {
	s.logger.Info("Stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.svr.Shutdown(ctx); err != nil {
		s.logger.Error("failed to stop the server", zap.Error(err))
		s.logger.Info("force stopping the server")
		if err = s.svr.Close(); err != nil {
			s.logger.Error("failed to force stopping the server", zap.Error(err))
		}
	}
}
