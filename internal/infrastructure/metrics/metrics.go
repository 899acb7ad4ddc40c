package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsApplied *prometheus.CounterVec
	TransactionAmount   prometheus.Histogram
	TransfersCreated    prometheus.Counter
	TransactionErrors   *prometheus.CounterVec
	VersionConflicts    prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// Notification metrics
	NotificationsDelivered prometheus.Counter
	NotificationsDropped   prometheus.Counter
	LargeTransactionTasks  prometheus.Counter
	TaskEnqueueErrors      prometheus.Counter

	// WebSocket metrics
	WSConnectionsActive *prometheus.GaugeVec
	WSConnectionsTotal  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries *prometheus.CounterVec
	DBErrors  *prometheus.CounterVec

	// Redis metrics
	IdempotencyChecks *prometheus.CounterVec

	// Authentication metrics
	AuthFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_transactions_applied_total",
				Help: "Total number of committed transactions by kind",
			},
			[]string{"kind"},
		),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankstream_transaction_amount",
			Help:    "Distribution of transaction amounts",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_transfers_created_total",
			Help: "Total number of committed transfers",
		}),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_transaction_errors_total",
				Help: "Total number of rejected transactions by reason",
			},
			[]string{"reason"},
		),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_version_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		NotificationsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_notifications_delivered_total",
			Help: "Total number of notifications enqueued to subscribers",
		}),
		NotificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_notifications_dropped_total",
			Help: "Total number of notifications dropped (full queue or dead connection)",
		}),
		LargeTransactionTasks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_large_transaction_tasks_total",
			Help: "Total number of large-transaction tasks enqueued",
		}),
		TaskEnqueueErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_task_enqueue_errors_total",
			Help: "Total number of failed task queue publishes",
		}),
		WSConnectionsActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bankstream_ws_connections_active",
				Help: "Currently active WebSocket connections by scope",
			},
			[]string{"scope"},
		),
		WSConnectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_ws_connections_total",
				Help: "Total number of admitted WebSocket connections by scope",
			},
			[]string{"scope"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankstream_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_db_queries_total",
				Help: "Total number of database queries by operation",
			},
			[]string{"operation"},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_db_errors_total",
				Help: "Total number of database errors by operation",
			},
			[]string{"operation"},
		),
		IdempotencyChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankstream_idempotency_checks_total",
				Help: "Total number of idempotency key checks by result",
			},
			[]string{"result"},
		),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankstream_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		}),
	}
}
