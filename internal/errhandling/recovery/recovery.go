// Package recovery executes server-suggested recovery strategies.
package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
)

// ErrNoRefresher is reported when token_refresh runs before a refresher is installed.
var ErrNoRefresher = errors.New("no token refresher installed")

// Strategy is a named remediation procedure with a deterministic outcome.
type Strategy interface {
	// Name returns the strategy id this implementation handles.
	Name() domain.Strategy

	// Execute runs the strategy for a descriptor.
	Execute(ctx context.Context, d domain.ErrorDescriptor, cc domain.CallContext) domain.RecoveryOutcome
}

// TokenRefresher renews credentials. A nil error means the refresh succeeded.
type TokenRefresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to TokenRefresher.
type RefreshFunc func(ctx context.Context) error

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Config holds recovery tuning.
type Config struct {
	DefaultRetryAfter time.Duration `yaml:"default_retry_after"`
	MaxRetryAfter     time.Duration `yaml:"max_retry_after"`
	MaxRetries        int           `yaml:"max_retries"`
}

// DefaultConfig returns the defaults used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		DefaultRetryAfter: 1 * time.Second,
		MaxRetryAfter:     60 * time.Second,
		MaxRetries:        3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DefaultRetryAfter <= 0 {
		c.DefaultRetryAfter = def.DefaultRetryAfter
	}
	if c.MaxRetryAfter <= 0 {
		c.MaxRetryAfter = def.MaxRetryAfter
	}
	if c.MaxRetryAfter < c.DefaultRetryAfter {
		c.MaxRetryAfter = c.DefaultRetryAfter
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	return c
}
