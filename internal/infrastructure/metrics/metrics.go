package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	WalletsCreated      prometheus.Counter
	Deposits            prometheus.Counter
	Withdrawals         prometheus.Counter
	InsufficientBalance prometheus.Counter
	OperationDuration   *prometheus.HistogramVec
	OperationAmount     *prometheus.HistogramVec
	OperationErrors     *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WalletsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_deposits_total",
			Help: "Total number of committed deposits",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_withdrawals_total",
			Help: "Total number of committed withdrawals",
		}),
		InsufficientBalance: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_insufficient_balance_total",
			Help: "Total number of withdrawals rejected for insufficient balance",
		}),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_operation_duration_seconds",
				Help:    "Duration of committed wallet operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_operation_amount",
				Help:    "Amounts of committed wallet operations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_operation_errors_total",
				Help: "Total failed wallet operations by type and reason",
			},
			[]string{"type", "reason"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gowallet_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"action", "status"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_outbox_events_total",
				Help: "Outbox events handled by the publisher",
			},
			[]string{"event_type", "status"},
		),
	}
}

// WalletCreated implements usecase.WalletMetrics.
func (m *Metrics) WalletCreated() {
	m.WalletsCreated.Inc()
}

// OperationSucceeded implements usecase.WalletMetrics.
func (m *Metrics) OperationSucceeded(txType domain.TransactionType, amount decimal.Decimal, duration time.Duration) {
	switch txType {
	case domain.TransactionTypeDeposit:
		m.Deposits.Inc()
	case domain.TransactionTypeWithdrawal:
		m.Withdrawals.Inc()
	}

	m.OperationDuration.WithLabelValues(string(txType)).Observe(duration.Seconds())
	m.OperationAmount.WithLabelValues(string(txType)).Observe(amount.InexactFloat64())
}

// OperationFailed implements usecase.WalletMetrics.
func (m *Metrics) OperationFailed(txType domain.TransactionType, reason string) {
	if reason == "insufficient_balance" {
		m.InsufficientBalance.Inc()
	}

	m.OperationErrors.WithLabelValues(string(txType), reason).Inc()
}

// AuthAttempt records the outcome of a register, login or refresh call.
func (m *Metrics) AuthAttempt(action string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.AuthAttempts.WithLabelValues(action, status).Inc()
}

// EventPublished records the outcome of publishing one outbox event.
func (m *Metrics) EventPublished(eventType string, ok bool) {
	status := "published"
	if !ok {
		status = "failed"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}
