package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsHandled tracks errors passed through the handler
	ErrorsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_errors_handled_total",
			Help: "Total number of errors handled",
		},
		[]string{"category", "severity"},
	)

	// RecoveryOutcomes tracks recovery strategy results
	RecoveryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_recovery_outcomes_total",
			Help: "Total number of recovery strategy executions",
		},
		[]string{"strategy", "action"},
	)

	// BackoffSeconds tracks time spent waiting in rate limit backoff
	BackoffSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardian_backoff_seconds",
			Help:    "Rate limit backoff wait in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// RetryAttempts tracks retry executor invocations
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_retry_attempts_total",
			Help: "Total number of operation invocations made by the retry executor",
		},
		[]string{"operation", "result"},
	)

	// Notifications tracks messages pushed to the notification sink
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_notifications_total",
			Help: "Total number of notifications sent",
		},
		[]string{"level"},
	)

	// ConnectivityOnline is 1 while the network monitor reports online
	ConnectivityOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guardian_connectivity_online",
			Help: "Whether the network monitor reports the platform online",
		},
	)

	// ConnectivityTransitions tracks online/offline transitions
	ConnectivityTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_connectivity_transitions_total",
			Help: "Total number of connectivity transitions",
		},
		[]string{"to"},
	)

	// DBConnectionPoolUsage tracks incident journal pool usage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guardian_db_connection_pool_usage_percent",
			Help: "Incident journal connection pool usage percentage",
		},
	)
)
