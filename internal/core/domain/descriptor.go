package domain

import (
	"fmt"
	"time"
)

// Source tags the input shape a descriptor was built from.
type Source string

const (
	SourceHTTP  Source = "http"
	SourceRPC   Source = "rpc"
	SourceError Source = "error"
	SourceValue Source = "value"
)

// Strategy names a server-suggested recovery procedure.
type Strategy string

const (
	StrategyTokenRefresh     Strategy = "token_refresh"
	StrategyRateLimitBackoff Strategy = "rate_limit_backoff"
	StrategyNetworkRetry     Strategy = "network_retry"
	StrategyServiceFallback  Strategy = "service_fallback"
	StrategyNone             Strategy = "none"
)

// RecoveryHint is the recovery block a server attaches to an error response.
type RecoveryHint struct {
	Strategy     Strategy `json:"strategy"`
	UserMessage  string   `json:"user_message"`
	Actions      []string `json:"actions"`
	RetryEnabled bool     `json:"retry_enabled"`
}

// ErrorDescriptor is the canonical form of any failure. It is built once by
// the normalizer and not modified afterwards.
type ErrorDescriptor struct {
	Message      string            `json:"message"`
	StatusCode   int               `json:"status_code,omitempty"` // 0 = absent
	Code         string            `json:"code,omitempty"`
	Category     ErrorCategory     `json:"category,omitempty"` // empty = server did not say
	Timestamp    time.Time         `json:"timestamp"`
	Details      map[string]any    `json:"details,omitempty"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	RecoveryHint *RecoveryHint     `json:"recovery,omitempty"`
	Source       Source            `json:"source"`
}

// Fingerprint derives the statistics key for a descriptor once its category
// is known: category:status, falling back to category:code, then category:none.
func Fingerprint(category ErrorCategory, d ErrorDescriptor) string {
	switch {
	case d.StatusCode > 0:
		return fmt.Sprintf("%s:%d", category, d.StatusCode)
	case d.Code != "":
		return fmt.Sprintf("%s:%s", category, d.Code)
	default:
		return fmt.Sprintf("%s:none", category)
	}
}
