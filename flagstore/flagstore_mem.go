package flagstore

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

type MemFlagStore struct {
	data *xsync.MapOf[string, []string]
}

var _ FlagStore = (*MemFlagStore)(nil)

func NewMemFlagStore() *MemFlagStore {
	return &MemFlagStore{
		data: xsync.NewMapOf[string, []string](),
	}
}

func (s *MemFlagStore) Recent(ctx context.Context, userID string, n int) ([]string, error) {
	v, ok := s.data.Load(userID)
	if !ok {
		return []string{}, nil
	}
	if len(v) > n {
		v = v[len(v)-n:]
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemFlagStore) Append(ctx context.Context, userID, content string) error {
	s.data.Compute(userID, func(old []string, _ bool) ([]string, bool) {
		// copy-on-write so concurrent readers never see a partial append
		next := make([]string, len(old), len(old)+1)
		copy(next, old)
		return append(next, content), false
	})
	return nil
}
