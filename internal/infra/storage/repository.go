package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
)

// DefaultRecentLimit is used by Recent when limit <= 0.
const DefaultRecentLimit = 50

var (
	// ErrNotFound is returned when an incident doesn't exist
	ErrNotFound = errors.New("incident not found")
)

// IncidentRepository journals handled errors for later diagnostics
type IncidentRepository interface {
	// Append stores an incident
	Append(ctx context.Context, incident *domain.Incident) error

	// Get retrieves an incident by ID
	Get(ctx context.Context, id string) (*domain.Incident, error)

	// Recent returns up to limit incidents, newest first. A limit <= 0
	// means DefaultRecentLimit.
	Recent(ctx context.Context, limit int) ([]*domain.Incident, error)

	// CountByCategory returns incident counts grouped by category
	CountByCategory(ctx context.Context) (map[domain.ErrorCategory]int, error)

	// DeleteOlderThan removes incidents that occurred before threshold
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int, error)
}
