package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/guardian/internal/infra/storage"
)

// Pruner deletes journaled incidents based on retention policy.
type Pruner struct {
	retention time.Duration
	repo      storage.IncidentRepository
	log       *slog.Logger
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, repo storage.IncidentRepository) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
		log:       slog.Default().With("component", "pruner"),
	}
}

// Start runs the pruner loop until ctx is done.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check every 10% of retention, between 1 minute and 1 hour
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune removes incidents older than the retention period once.
func (p *Pruner) Prune(ctx context.Context) int {
	threshold := time.Now().Add(-p.retention)

	deleted, err := p.repo.DeleteOlderThan(ctx, threshold)
	if err != nil {
		p.log.Error("Failed to prune incidents", "error", err)
		return 0
	}
	if deleted > 0 {
		p.log.Info("Pruned incidents", "deleted", deleted, "threshold", threshold)
	}
	return deleted
}
