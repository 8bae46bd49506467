package staking

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsTimer struct {
	mu                               sync.Mutex
	previousResolution, previousScan *time.Time
}

func newMetricsTimer() *metricsTimer {
	return &metricsTimer{
		mu: sync.Mutex{},
	}
}

func (mt *metricsTimer) SetPreviousResolution(t *time.Time) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.previousResolution = t
}

func (mt *metricsTimer) SetPreviousScan(t *time.Time) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.previousScan = t
}

func (mt *metricsTimer) UpdatePrometheusMetrics() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.previousResolution != nil {
		secondsSinceLastResolution.Set(time.Since(*mt.previousResolution).Seconds())
	}
	if mt.previousScan != nil {
		secondsSinceLastRecoveryScan.Set(time.Since(*mt.previousScan).Seconds())
	}
}

var (
	metricsTimeKeeper = newMetricsTimer()

	sagasStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stk_total_sagas_started",
			Help: "Total number of transfer sagas started",
		},
		[]string{"kind"},
	)
	sagasResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stk_total_sagas_resolved",
			Help: "Total number of transfer sagas resolved, by final state",
		},
		[]string{"kind", "state"},
	)
	transferErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stk_total_transfer_errors",
			Help: "Total number of calls to the asset service that returned no usable outcome",
		},
		[]string{"call"},
	)
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stk_total_ledger_operations",
			Help: "Total number of ledger operations, by result",
		},
		[]string{"operation", "result"},
	)
	pendingSagas = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_current_pending_sagas",
		Help: "The number of sagas waiting for a transfer outcome",
	})
	inFlightTransfers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_current_in_flight_transfers",
		Help: "The number of transfer calls currently running",
	})
	totalStakeBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_total_stake_balance",
		Help: "Total stake balance of the pool",
	})
	totalStakers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_total_stakers",
		Help: "The number of accounts with a positive stake balance",
	})
	poolPaused = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_pool_paused",
		Help: "1 while the pool is paused",
	})
	secondsSinceLastResolution = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_seconds_since_last_saga_resolution",
		Help: "Seconds since a saga was last resolved",
	})
	secondsSinceLastRecoveryScan = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stk_seconds_since_last_recovery_scan",
		Help: "Seconds since pending sagas were last scanned",
	})

	timedTransferLag = promauto.NewSummary(prometheus.SummaryOpts{
		Name:       "stk_transfer_lag_seconds",
		Help:       "Seconds taken by the asset service to answer a transfer request",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
)
