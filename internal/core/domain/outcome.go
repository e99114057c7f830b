package domain

import "time"

// Recovery actions reported in a RecoveryOutcome.
const (
	ActionTokenRefreshed     = "token_refreshed"
	ActionTokenRefreshFailed = "token_refresh_failed"
	ActionRetryAfterDelay    = "retry_after_delay"
	ActionRetry              = "retry"
	ActionMaxRetriesExceeded = "max_retries_exceeded"
	ActionFallbackMode       = "fallback_mode"
	ActionNoRecovery         = "no_recovery"
	ActionRetryCancelled     = "retry_cancelled"
)

// RecoveryOutcome is the deterministic result of running a recovery strategy.
type RecoveryOutcome struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Attempt int    `json:"attempt,omitempty"` // 0 = absent
}

// HandlingResult is what the top-level handler returns to callers.
type HandlingResult struct {
	Handled     bool             `json:"handled"`
	UserMessage string           `json:"user_message"`
	ShouldRetry bool             `json:"should_retry"`
	Category    ErrorCategory    `json:"category"`
	Severity    ErrorSeverity    `json:"severity"`
	Fingerprint string           `json:"fingerprint"`
	Recovery    *RecoveryOutcome `json:"recovery,omitempty"`
}

// CallContext carries caller state into recovery and retry.
type CallContext struct {
	RetryCount int
	MaxRetries int    // <= 0 falls back to the configured default
	Service    string // human readable service name for notifications
	Operation  string
}

// ErrorStat aggregates occurrences of a single fingerprint.
type ErrorStat struct {
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// Incident is the journal record of one handled error.
type Incident struct {
	ID             string        `json:"id"               db:"id"`
	Fingerprint    string        `json:"fingerprint"      db:"fingerprint"`
	Category       ErrorCategory `json:"category"         db:"category"`
	Severity       ErrorSeverity `json:"severity"         db:"severity"`
	Message        string        `json:"message"          db:"message"`
	StatusCode     int           `json:"status_code"      db:"status_code"`
	Code           string        `json:"code"             db:"code"`
	RecoveryAction string        `json:"recovery_action"  db:"recovery_action"`
	Service        string        `json:"service"          db:"service"`
	OccurredAt     time.Time     `json:"occurred_at"      db:"occurred_at"`
}
