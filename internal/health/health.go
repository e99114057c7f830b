// Package health serves the diagnostics endpoints: liveness, error
// statistics, connectivity and Prometheus metrics.
package health

import "github.com/vietddude/guardian/internal/core/domain"

// SystemStatus represents the overall health state of the process.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
)

// Report is the body of GET /health.
type Report struct {
	Status SystemStatus `json:"status"`
	Online bool         `json:"online"`
}

// StatsSource exposes the handler's statistics.
type StatsSource interface {
	GetErrorStatistics() map[string]domain.ErrorStat
	ClearErrorPatterns()
}

// ConnectivitySource reports platform connectivity.
type ConnectivitySource interface {
	Online() bool
}
