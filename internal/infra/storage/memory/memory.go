package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/infra/storage"
)

// DefaultCapacity bounds the journal created by NewIncidentRepo.
const DefaultCapacity = 10000

// IncidentRepo is an in-process incident journal. Once it holds capacity
// incidents, each new one evicts the oldest appended.
type IncidentRepo struct {
	incidents map[string]*domain.Incident
	order     []string // insertion order, oldest first
	capacity  int
	mu        sync.RWMutex
}

// NewIncidentRepo creates a journal holding up to DefaultCapacity incidents.
func NewIncidentRepo() *IncidentRepo {
	return NewBoundedIncidentRepo(DefaultCapacity)
}

// NewBoundedIncidentRepo creates a journal holding up to capacity incidents.
// capacity <= 0 uses DefaultCapacity.
func NewBoundedIncidentRepo(capacity int) *IncidentRepo {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &IncidentRepo{
		incidents: make(map[string]*domain.Incident),
		capacity:  capacity,
	}
}

func (r *IncidentRepo) Append(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *incident
	if _, exists := r.incidents[incident.ID]; !exists {
		r.order = append(r.order, incident.ID)
	}
	r.incidents[incident.ID] = &cp

	for len(r.order) > r.capacity {
		delete(r.incidents, r.order[0])
		r.order[0] = ""
		r.order = r.order[1:]
	}
	return nil
}

func (r *IncidentRepo) Get(ctx context.Context, id string) (*domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *incident
	return &cp, nil
}

// Len returns the number of stored incidents.
func (r *IncidentRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.incidents)
}

func (r *IncidentRepo) Recent(ctx context.Context, limit int) ([]*domain.Incident, error) {
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Incident, 0, len(r.incidents))
	for _, incident := range r.incidents {
		cp := *incident
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *IncidentRepo) CountByCategory(ctx context.Context) (map[domain.ErrorCategory]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.ErrorCategory]int)
	for _, incident := range r.incidents {
		counts[incident.Category]++
	}
	return counts, nil
}

func (r *IncidentRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if r.incidents[id].OccurredAt.Before(threshold) {
			delete(r.incidents, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	clear(r.order[len(kept):])
	r.order = kept
	return deleted, nil
}
