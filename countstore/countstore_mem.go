package countstore

import (
	"context"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemCountStore keeps counters in process memory. Safe for concurrent use;
// buckets grow without bound until TrimBefore is called.
type MemCountStore struct {
	counts *xsync.MapOf[string, int]
}

var _ CountStore = (*MemCountStore)(nil)

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts: xsync.NewMapOf[string, int](),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, category, userID, period string) (int, error) {
	v, ok := s.counts.Load(periodBucket(category, userID, period))
	if !ok {
		return 0, nil
	}
	return v, nil
}

func (s *MemCountStore) Increment(ctx context.Context, category, userID, period string) error {
	k := periodBucket(category, userID, period)
	s.counts.Compute(k, func(old int, _ bool) (int, bool) {
		return old + 1, false
	})
	return nil
}

func (s *MemCountStore) TryIncrement(ctx context.Context, category, userID, period string, limit int) (bool, int, error) {
	k := periodBucket(category, userID, period)
	allowed := false
	v, _ := s.counts.Compute(k, func(old int, loaded bool) (int, bool) {
		if old >= limit {
			allowed = false
			return old, !loaded
		}
		allowed = true
		return old + 1, false
	})
	return allowed, v, nil
}

func (s *MemCountStore) TotalCount(ctx context.Context, category, userID string) (int, error) {
	prefix := category + "/" + userID + "/"
	total := 0
	s.counts.Range(func(k string, v int) bool {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
		return true
	})
	return total, nil
}

func (s *MemCountStore) TrimBefore(ctx context.Context, cutoff time.Time, categories []string) (int, error) {
	removed := 0
	s.counts.Range(func(k string, v int) bool {
		for _, cat := range categories {
			if !strings.HasPrefix(k, cat+"/") {
				continue
			}
			t := bucketTime(k)
			if !t.IsZero() && t.Before(cutoff) {
				s.counts.Delete(k)
				removed++
			}
			break
		}
		return true
	})
	return removed, nil
}
