package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/guardian/internal/core/domain"
)

// StatsStore mirrors error statistics into two Redis hashes keyed by
// fingerprint: one for counts and one for last-seen unix millis.
type StatsStore struct {
	rdb    *redis.Client
	prefix string
}

// NewStatsStore creates a Redis-backed statistics mirror.
func NewStatsStore(client *Client) *StatsStore {
	return &StatsStore{rdb: client.rdb, prefix: client.prefix}
}

// Key helpers
func countsKey(prefix string) string {
	return fmt.Sprintf("%s:error_stats:count", prefix)
}

func seenKey(prefix string) string {
	return fmt.Sprintf("%s:error_stats:last_seen", prefix)
}

// Record increments fingerprint and stores its last seen time.
func (s *StatsStore) Record(ctx context.Context, fingerprint string, seen time.Time) error {
	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, countsKey(s.prefix), fingerprint, 1)
	pipe.HSet(ctx, seenKey(s.prefix), fingerprint, seen.UnixMilli())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record error stat: %w", err)
	}
	return nil
}

// Snapshot reads every mirrored fingerprint.
func (s *StatsStore) Snapshot(ctx context.Context) (map[string]domain.ErrorStat, error) {
	counts, err := s.rdb.HGetAll(ctx, countsKey(s.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall counts failed: %w", err)
	}
	seen, err := s.rdb.HGetAll(ctx, seenKey(s.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall last seen failed: %w", err)
	}
	return mergeStats(counts, seen), nil
}

// Clear removes all mirrored statistics.
func (s *StatsStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, countsKey(s.prefix), seenKey(s.prefix)).Err(); err != nil {
		return fmt.Errorf("failed to clear error stats: %w", err)
	}
	return nil
}

// mergeStats joins the two hashes. Unparseable values are skipped.
func mergeStats(counts, seen map[string]string) map[string]domain.ErrorStat {
	out := make(map[string]domain.ErrorStat, len(counts))
	for fp, raw := range counts {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		stat := domain.ErrorStat{Count: n}
		if ms, err := strconv.ParseInt(seen[fp], 10, 64); err == nil {
			stat.LastSeen = time.UnixMilli(ms)
		}
		out[fp] = stat
	}
	return out
}
