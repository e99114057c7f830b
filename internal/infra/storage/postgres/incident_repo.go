package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/infra/storage"
)

// IncidentRepo implements storage.IncidentRepository using PostgreSQL.
type IncidentRepo struct {
	db *DB
}

// NewIncidentRepo creates a new PostgreSQL incident repository.
func NewIncidentRepo(db *DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

const incidentColumns = `id, fingerprint, category, severity, message, status_code, code,
	recovery_action, service, occurred_at`

// Append adds an incident.
func (r *IncidentRepo) Append(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (` + incidentColumns + `)
		VALUES (:id, :fingerprint, :category, :severity, :message, :status_code, :code,
			:recovery_action, :service, :occurred_at)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("failed to add incident: %w", err)
	}
	return nil
}

// Get returns an incident by ID.
func (r *IncidentRepo) Get(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	var incident domain.Incident
	err := r.db.GetContext(ctx, &incident, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &incident, nil
}

// Recent returns the newest incidents.
func (r *IncidentRepo) Recent(ctx context.Context, limit int) ([]*domain.Incident, error) {
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY occurred_at DESC LIMIT $1`

	var incidents []*domain.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

// CountByCategory groups incident counts by category.
func (r *IncidentRepo) CountByCategory(ctx context.Context) (map[domain.ErrorCategory]int, error) {
	query := `SELECT category, COUNT(*) AS count FROM incidents GROUP BY category`

	var rows []struct {
		Category domain.ErrorCategory `db:"category"`
		Count    int                  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count incidents: %w", err)
	}

	counts := make(map[domain.ErrorCategory]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// DeleteOlderThan prunes incidents before threshold.
func (r *IncidentRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incidents WHERE occurred_at < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to prune incidents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
