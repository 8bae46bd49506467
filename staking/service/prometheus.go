package service

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const metricsWriteTimeout = 30 * time.Second

// PrometheusServer exposes the stk_ metrics for scraping
type PrometheusServer struct {
	*httpServer
}

func NewPrometheusServer(addr string, logger *zap.Logger) *PrometheusServer {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	return &PrometheusServer{
		httpServer: newHTTPServer("prometheus", addr, router, metricsWriteTimeout, logger),
	}
}
