package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Sync run metrics
	RunsStarted   prometheus.Counter
	RunsSucceeded prometheus.Counter
	RunsFailed    prometheus.Counter
	RunsCancelled prometheus.Counter
	RunDuration   prometheus.Histogram

	// Pipeline metrics
	TransactionsFetchedTotal  prometheus.Counter
	TransactionsImportedTotal prometheus.Counter
	ImportFailures            prometheus.Counter
	FramesCaptured            prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_runs_started_total",
			Help: "Total number of sync runs started",
		}),
		RunsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_runs_succeeded_total",
			Help: "Total number of sync runs that completed successfully",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_runs_failed_total",
			Help: "Total number of sync runs that ended in error",
		}),
		RunsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_runs_cancelled_total",
			Help: "Total number of sync runs cancelled by the operator",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "banksync_run_duration_seconds",
			Help:    "End-to-end duration of sync runs",
			Buckets: []float64{5, 15, 30, 60, 120, 180, 300, 600},
		}),

		TransactionsFetchedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_transactions_fetched_total",
			Help: "Total number of transactions fetched from the bank",
		}),
		TransactionsImportedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_transactions_imported_total",
			Help: "Total number of entries sent to the budget ledger",
		}),
		ImportFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_import_failures_total",
			Help: "Total number of per-account import failures",
		}),
		FramesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "banksync_frames_captured_total",
			Help: "Total number of browser telemetry frames captured",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banksync_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banksync_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banksync_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
	}
}

// RunStarted implements usecase.RunMetrics.
func (m *Metrics) RunStarted() { m.RunsStarted.Inc() }

// RunSucceeded implements usecase.RunMetrics.
func (m *Metrics) RunSucceeded() { m.RunsSucceeded.Inc() }

// RunFailed implements usecase.RunMetrics.
func (m *Metrics) RunFailed() { m.RunsFailed.Inc() }

// RunCancelled implements usecase.RunMetrics.
func (m *Metrics) RunCancelled() { m.RunsCancelled.Inc() }

// ObserveRunDuration implements usecase.RunMetrics.
func (m *Metrics) ObserveRunDuration(d time.Duration) { m.RunDuration.Observe(d.Seconds()) }

// TransactionsFetched implements usecase.RunMetrics.
func (m *Metrics) TransactionsFetched(n int) { m.TransactionsFetchedTotal.Add(float64(n)) }

// TransactionsImported implements usecase.RunMetrics.
func (m *Metrics) TransactionsImported(n int) { m.TransactionsImportedTotal.Add(float64(n)) }

// ImportFailed implements usecase.RunMetrics.
func (m *Metrics) ImportFailed() { m.ImportFailures.Inc() }

// FrameCaptured implements usecase.RunMetrics.
func (m *Metrics) FrameCaptured() { m.FramesCaptured.Inc() }
