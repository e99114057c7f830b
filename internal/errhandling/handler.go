// Package errhandling is the process-wide error handling and recovery engine.
// It normalizes failures, classifies them, records statistics, runs recovery
// strategies and pushes a human readable notification.
package errhandling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/errhandling/classify"
	"github.com/vietddude/guardian/internal/errhandling/normalize"
	"github.com/vietddude/guardian/internal/errhandling/notify"
	"github.com/vietddude/guardian/internal/errhandling/recovery"
	"github.com/vietddude/guardian/internal/errhandling/retry"
	"github.com/vietddude/guardian/internal/errhandling/stats"
	"github.com/vietddude/guardian/internal/infra/storage"
	"github.com/vietddude/guardian/internal/metrics"
)

// storeTimeout bounds best-effort writes to the mirror and journal.
const storeTimeout = 2 * time.Second

// StatsMirror receives a copy of every statistics update.
type StatsMirror interface {
	Record(ctx context.Context, fingerprint string, seen time.Time) error
	Clear(ctx context.Context) error
}

// Config wires the handler's collaborators. Every field is optional.
type Config struct {
	Recovery  recovery.Config
	Notifier  notify.Notifier
	Refresher recovery.TokenRefresher
	Mirror    StatsMirror
	Journal   storage.IncidentRepository
	Logger    *slog.Logger
}

// Options adjusts a single HandleError call. The zero value enables recovery
// and notifications.
type Options struct {
	DisableRecovery bool
	Silent          bool
	DisableToast    bool
}

// Handler is safe for concurrent use.
type Handler struct {
	mu       sync.RWMutex
	notifier notify.Notifier

	engine  *recovery.Engine
	stats   *stats.Tracker
	mirror  StatsMirror
	journal storage.IncidentRepository
	log     *slog.Logger
}

// NewHandler creates a handler with empty statistics.
func NewHandler(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		engine:  recovery.NewEngine(cfg.Recovery, cfg.Refresher, log),
		stats:   stats.NewTracker(),
		mirror:  cfg.Mirror,
		journal: cfg.Journal,
		log:     log.With("component", "errhandling"),
	}
	h.SetNotifier(cfg.Notifier)
	return h
}

// SetNotifier installs the notification sink. nil restores the no-op sink.
func (h *Handler) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Nop{}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifier = n
}

// SetTokenRefresher installs the credential collaborator.
func (h *Handler) SetTokenRefresher(r recovery.TokenRefresher) {
	h.engine.SetRefresher(r)
}

// Engine exposes the recovery engine so callers can register strategies.
func (h *Handler) Engine() *recovery.Engine {
	return h.engine
}

func (h *Handler) currentNotifier() notify.Notifier {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.notifier
}

// HandleError runs input through normalize, classify, statistics, recovery
// and notification, in that order. It never panics and never returns the
// original error.
func (h *Handler) HandleError(
	ctx context.Context,
	input any,
	cc domain.CallContext,
	opts Options,
) (result domain.HandlingResult) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Error handler panicked", "panic", r)
			result = domain.HandlingResult{
				Handled:     false,
				UserMessage: defaultMessages[domain.CategoryUnknown],
				Category:    domain.CategoryUnknown,
				Severity:    domain.SeverityMedium,
			}
		}
	}()

	d := normalize.Normalize(input)
	category, severity := classify.Classify(d)
	fingerprint := domain.Fingerprint(category, d)

	stat := h.stats.Record(fingerprint)
	metrics.ErrorsHandled.WithLabelValues(string(category), string(severity)).Inc()
	h.mirrorRecord(ctx, fingerprint, stat.LastSeen)

	var outcome *domain.RecoveryOutcome
	if !opts.DisableRecovery {
		outcome = h.engine.Recover(ctx, d, cc)
	}

	msg := UserMessage(category, d)
	if !opts.Silent && !opts.DisableToast {
		notify.Send(h.currentNotifier(), notify.Compose(category, d, msg, serviceName(cc, d)))
	}

	result = domain.HandlingResult{
		Handled:     true,
		UserMessage: msg,
		ShouldRetry: shouldRetry(category, d, outcome),
		Category:    category,
		Severity:    severity,
		Fingerprint: fingerprint,
		Recovery:    outcome,
	}

	h.log.Debug("Error handled",
		"fingerprint", fingerprint,
		"severity", severity,
		"message", d.Message,
		"should_retry", result.ShouldRetry,
		"occurrences", stat.Count,
	)
	h.journalAppend(ctx, d, result, cc)
	return result
}

// HandleAuthenticationError handles a failure from an authenticated call.
func (h *Handler) HandleAuthenticationError(ctx context.Context, err any) domain.HandlingResult {
	return h.HandleError(ctx, err, domain.CallContext{Operation: "authentication"}, Options{})
}

// HandleServiceError handles a failure attributed to a named service.
func (h *Handler) HandleServiceError(ctx context.Context, err any, service string) domain.HandlingResult {
	return h.HandleError(ctx, err, domain.CallContext{Service: service}, Options{})
}

// HandleValidationError handles a form submission failure. The result never
// asks for a retry.
func (h *Handler) HandleValidationError(ctx context.Context, err any) domain.HandlingResult {
	result := h.HandleError(ctx, err, domain.CallContext{Operation: "validation"}, Options{DisableRecovery: true})
	result.ShouldRetry = false
	return result
}

// GetErrorStatistics returns a snapshot of the statistics.
func (h *Handler) GetErrorStatistics() map[string]domain.ErrorStat {
	return h.stats.Snapshot()
}

// ClearErrorPatterns empties the statistics and the mirror.
func (h *Handler) ClearErrorPatterns() {
	h.stats.Clear()
	if h.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.mirror.Clear(ctx); err != nil {
		h.log.Warn("Failed to clear stats mirror", "error", err)
	}
}

// ExecuteWithRetry is retry.Execute exposed alongside the handler operations.
func ExecuteWithRetry[T any](
	ctx context.Context,
	cc domain.CallContext,
	maxRetries int,
	op retry.Operation[T],
) (T, error) {
	return retry.Execute(ctx, cc, maxRetries, op)
}

func (h *Handler) mirrorRecord(ctx context.Context, fingerprint string, seen time.Time) {
	if h.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := h.mirror.Record(ctx, fingerprint, seen); err != nil {
		h.log.Warn("Failed to mirror error stat", "fingerprint", fingerprint, "error", err)
	}
}

func (h *Handler) journalAppend(
	ctx context.Context,
	d domain.ErrorDescriptor,
	result domain.HandlingResult,
	cc domain.CallContext,
) {
	if h.journal == nil {
		return
	}
	incident := &domain.Incident{
		ID:          uuid.NewString(),
		Fingerprint: result.Fingerprint,
		Category:    result.Category,
		Severity:    result.Severity,
		Message:     d.Message,
		StatusCode:  d.StatusCode,
		Code:        d.Code,
		Service:     serviceName(cc, d),
		OccurredAt:  d.Timestamp,
	}
	if result.Recovery != nil {
		incident.RecoveryAction = result.Recovery.Action
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := h.journal.Append(ctx, incident); err != nil {
		h.log.Warn("Failed to journal incident", "fingerprint", result.Fingerprint, "error", err)
	}
}
