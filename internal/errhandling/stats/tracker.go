// Package stats aggregates error occurrences by fingerprint.
package stats

import (
	"sync"
	"time"

	"github.com/vietddude/guardian/internal/core/domain"
)

// Tracker counts occurrences per fingerprint. It is safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]domain.ErrorStat
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]domain.ErrorStat),
		now:     time.Now,
	}
}

// Record increments the count for fingerprint and returns the updated entry.
func (t *Tracker) Record(fingerprint string) domain.ErrorStat {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.entries[fingerprint]
	entry.Count++
	entry.LastSeen = t.now()
	t.entries[fingerprint] = entry
	return entry
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() map[string]domain.ErrorStat {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]domain.ErrorStat, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of distinct fingerprints.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Clear removes every entry.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]domain.ErrorStat)
}
