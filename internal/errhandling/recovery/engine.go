package recovery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/metrics"
)

// Engine dispatches descriptors to the strategy named by their recovery hint.
type Engine struct {
	mu         sync.RWMutex
	strategies map[domain.Strategy]Strategy
	tokens     *TokenRefresh
	log        *slog.Logger
}

// NewEngine creates an engine with the built-in strategies registered.
// refresher may be nil.
func NewEngine(cfg Config, refresher TokenRefresher, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "recovery")
	cfg = cfg.withDefaults()

	e := &Engine{
		strategies: make(map[domain.Strategy]Strategy),
		tokens:     NewTokenRefresh(refresher, log),
		log:        log,
	}
	e.Register(e.tokens)
	e.Register(&RateLimitBackoff{
		DefaultDelay: cfg.DefaultRetryAfter,
		MaxDelay:     cfg.MaxRetryAfter,
		log:          log,
	})
	e.Register(&NetworkRetry{DefaultMaxRetries: cfg.MaxRetries})
	e.Register(ServiceFallback{})
	return e
}

// Register installs s, replacing any strategy with the same name.
func (e *Engine) Register(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[s.Name()] = s
}

// SetRefresher installs the credential collaborator used by token_refresh.
func (e *Engine) SetRefresher(r TokenRefresher) {
	e.tokens.SetRefresher(r)
}

// Recover runs the strategy suggested by d's recovery hint. It returns nil when
// there is no hint, retry is disabled, or the strategy is none/unrecognized.
func (e *Engine) Recover(
	ctx context.Context,
	d domain.ErrorDescriptor,
	cc domain.CallContext,
) *domain.RecoveryOutcome {
	hint := d.RecoveryHint
	if hint == nil || !hint.RetryEnabled || hint.Strategy == domain.StrategyNone {
		return nil
	}

	e.mu.RLock()
	s, ok := e.strategies[hint.Strategy]
	e.mu.RUnlock()
	if !ok {
		e.log.Debug("No strategy registered", "strategy", hint.Strategy)
		return nil
	}

	outcome := s.Execute(ctx, d, cc)
	metrics.RecoveryOutcomes.WithLabelValues(string(hint.Strategy), outcome.Action).Inc()
	e.log.Debug("Recovery executed",
		"strategy", hint.Strategy,
		"action", outcome.Action,
		"success", outcome.Success,
	)
	return &outcome
}
