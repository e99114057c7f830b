package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/infra/storage"
)

func TestIncidentRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewIncidentRepo()
	base := time.Now()

	incidents := []*domain.Incident{
		{ID: "a", Category: domain.CategoryNetwork, OccurredAt: base.Add(-2 * time.Hour)},
		{ID: "b", Category: domain.CategoryNetwork, OccurredAt: base.Add(-time.Minute)},
		{ID: "c", Category: domain.CategoryAuthentication, OccurredAt: base},
	}
	for _, inc := range incidents {
		if err := repo.Append(ctx, inc); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, _ := repo.Recent(ctx, 2)
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("unexpected recent order: %v", recent)
	}

	counts, _ := repo.CountByCategory(ctx)
	if counts[domain.CategoryNetwork] != 2 || counts[domain.CategoryAuthentication] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	deleted, _ := repo.DeleteOlderThan(ctx, base.Add(-time.Hour))
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if _, err := repo.Get(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentRepo_Capacity(t *testing.T) {
	ctx := context.Background()
	repo := NewBoundedIncidentRepo(3)
	base := time.Now()

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		_ = repo.Append(ctx, &domain.Incident{ID: id, OccurredAt: base.Add(time.Duration(i) * time.Second)})
	}

	if repo.Len() != 3 {
		t.Fatalf("expected 3 incidents, got %d", repo.Len())
	}
	for _, id := range []string{"a", "b"} {
		if _, err := repo.Get(ctx, id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected %s to be evicted, got %v", id, err)
		}
	}
	if _, err := repo.Get(ctx, "e"); err != nil {
		t.Errorf("expected newest incident to be kept, got %v", err)
	}
}

func TestIncidentRepo_ReappendDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewBoundedIncidentRepo(2)
	now := time.Now()

	_ = repo.Append(ctx, &domain.Incident{ID: "a", OccurredAt: now})
	_ = repo.Append(ctx, &domain.Incident{ID: "a", OccurredAt: now})
	_ = repo.Append(ctx, &domain.Incident{ID: "b", OccurredAt: now})

	if repo.Len() != 2 {
		t.Errorf("expected both incidents kept, got %d", repo.Len())
	}
}

func TestIncidentRepo_DeleteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewBoundedIncidentRepo(2)
	base := time.Now()

	_ = repo.Append(ctx, &domain.Incident{ID: "old", OccurredAt: base.Add(-time.Hour)})
	_ = repo.Append(ctx, &domain.Incident{ID: "mid", OccurredAt: base})
	if deleted, _ := repo.DeleteOlderThan(ctx, base.Add(-time.Minute)); deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	_ = repo.Append(ctx, &domain.Incident{ID: "new", OccurredAt: base.Add(time.Minute)})
	if _, err := repo.Get(ctx, "mid"); err != nil {
		t.Errorf("mid should survive while under capacity: %v", err)
	}
	if repo.Len() != 2 {
		t.Errorf("expected 2 incidents, got %d", repo.Len())
	}
}

func TestIncidentRepo_RecentDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewIncidentRepo()
	now := time.Now()
	for i := 0; i < storage.DefaultRecentLimit+10; i++ {
		_ = repo.Append(ctx, &domain.Incident{ID: fmt.Sprintf("i%d", i), OccurredAt: now})
	}

	recent, _ := repo.Recent(ctx, 0)
	if len(recent) != storage.DefaultRecentLimit {
		t.Errorf("expected %d incidents, got %d", storage.DefaultRecentLimit, len(recent))
	}
}
