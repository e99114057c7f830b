package recovery

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/metrics"
)

// TokenRefresh asks the credential collaborator for fresh tokens.
type TokenRefresh struct {
	mu        sync.RWMutex
	refresher TokenRefresher
	log       *slog.Logger
}

// NewTokenRefresh creates the token_refresh strategy. refresher may be nil
// and installed later with SetRefresher.
func NewTokenRefresh(refresher TokenRefresher, log *slog.Logger) *TokenRefresh {
	return &TokenRefresh{refresher: refresher, log: log}
}

// SetRefresher installs the credential collaborator.
func (s *TokenRefresh) SetRefresher(r TokenRefresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

func (s *TokenRefresh) Name() domain.Strategy { return domain.StrategyTokenRefresh }

func (s *TokenRefresh) Execute(
	ctx context.Context,
	_ domain.ErrorDescriptor,
	_ domain.CallContext,
) domain.RecoveryOutcome {
	s.mu.RLock()
	r := s.refresher
	s.mu.RUnlock()

	err := ErrNoRefresher
	if r != nil {
		err = r.Refresh(ctx)
	}
	if err != nil {
		s.log.Warn("Token refresh failed", "error", err)
		return domain.RecoveryOutcome{Success: false, Action: domain.ActionTokenRefreshFailed}
	}
	return domain.RecoveryOutcome{Success: true, Action: domain.ActionTokenRefreshed}
}

// RateLimitBackoff waits for the server-provided retry_after before
// signalling that the caller may retry.
type RateLimitBackoff struct {
	DefaultDelay time.Duration
	MaxDelay     time.Duration
	log          *slog.Logger
}

func (s *RateLimitBackoff) Name() domain.Strategy { return domain.StrategyRateLimitBackoff }

func (s *RateLimitBackoff) Execute(
	ctx context.Context,
	d domain.ErrorDescriptor,
	_ domain.CallContext,
) domain.RecoveryOutcome {
	delay := s.GetDelay(d)
	s.log.Debug("Rate limited, backing off", "delay", delay)

	start := time.Now()
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		metrics.BackoffSeconds.Observe(time.Since(start).Seconds())
		return domain.RecoveryOutcome{Success: false, Action: domain.ActionRetryCancelled}
	case <-timer.C:
	}

	metrics.BackoffSeconds.Observe(time.Since(start).Seconds())
	return domain.RecoveryOutcome{Success: true, Action: domain.ActionRetryAfterDelay}
}

// maxDelaySeconds is the largest retry_after that fits in a time.Duration.
var maxDelaySeconds = time.Duration(math.MaxInt64).Seconds()

// GetDelay reads details.retry_after (seconds). Absent or non-positive values
// use DefaultDelay; the result is capped at MaxDelay.
func (s *RateLimitBackoff) GetDelay(d domain.ErrorDescriptor) time.Duration {
	secs, ok := retryAfterSeconds(d.Details["retry_after"])
	if !ok || math.IsNaN(secs) || secs <= 0 {
		return s.DefaultDelay
	}
	// Compare in seconds so huge values and +Inf never overflow the Duration.
	if s.MaxDelay > 0 && secs >= s.MaxDelay.Seconds() {
		return s.MaxDelay
	}
	if secs >= maxDelaySeconds {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs * float64(time.Second))
}

func retryAfterSeconds(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// NetworkRetry counts attempts against a cap; delaying between attempts is
// left to the caller.
type NetworkRetry struct {
	DefaultMaxRetries int
}

func (s *NetworkRetry) Name() domain.Strategy { return domain.StrategyNetworkRetry }

func (s *NetworkRetry) Execute(
	_ context.Context,
	_ domain.ErrorDescriptor,
	cc domain.CallContext,
) domain.RecoveryOutcome {
	maxRetries := cc.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.DefaultMaxRetries
	}
	retryCount := max(cc.RetryCount, 0)

	if retryCount < maxRetries {
		return domain.RecoveryOutcome{Success: true, Action: domain.ActionRetry, Attempt: retryCount + 1}
	}
	return domain.RecoveryOutcome{Success: false, Action: domain.ActionMaxRetriesExceeded}
}

// ServiceFallback tells the caller to degrade to cached or reduced functionality.
type ServiceFallback struct{}

func (ServiceFallback) Name() domain.Strategy { return domain.StrategyServiceFallback }

func (ServiceFallback) Execute(
	context.Context,
	domain.ErrorDescriptor,
	domain.CallContext,
) domain.RecoveryOutcome {
	return domain.RecoveryOutcome{Success: true, Action: domain.ActionFallbackMode}
}
