package modstore

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memUserRecord struct {
	mu   sync.Mutex
	meta UserMeta
}

// MemModStore keeps moderation records in process memory, one lock per user
// record so unrelated users never serialize on each other.
type MemModStore struct {
	users       *xsync.MapOf[string, *memUserRecord]
	appealIndex *xsync.MapOf[string, string]
}

var _ ModStore = (*MemModStore)(nil)

func NewMemModStore() *MemModStore {
	return &MemModStore{
		users:       xsync.NewMapOf[string, *memUserRecord](),
		appealIndex: xsync.NewMapOf[string, string](),
	}
}

func (s *MemModStore) record(userID string) *memUserRecord {
	rec, loaded := s.users.Load(userID)
	if loaded {
		return rec
	}
	now := time.Now().UTC()
	fresh := &memUserRecord{
		meta: UserMeta{
			UserID:          userID,
			AccountCreated:  now,
			LastActivity:    now,
			ShadowbanStatus: ShadowbanNone,
		},
	}
	rec, _ = s.users.LoadOrStore(userID, fresh)
	return rec
}

func copyMeta(m UserMeta) UserMeta {
	out := m
	out.Appeals = make([]Appeal, len(m.Appeals))
	copy(out.Appeals, m.Appeals)
	return out
}

func (s *MemModStore) GetMeta(ctx context.Context, userID string) (UserMeta, error) {
	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return copyMeta(rec.meta), nil
}

func (s *MemModStore) SetAccountCreated(ctx context.Context, userID string, ts time.Time) error {
	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.meta.AccountCreated = ts
	return nil
}

func (s *MemModStore) TouchActivity(ctx context.Context, userID string) error {
	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.meta.LastActivity = time.Now().UTC()
	return nil
}

func (s *MemModStore) SetShadowban(ctx context.Context, userID string, status ShadowbanStatus, reason string) error {
	rec := s.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.meta.ShadowbanStatus = status
	rec.meta.ShadowbanReason = reason
	if status == ShadowbanNone {
		rec.meta.ShadowbanReason = ""
	}
	return nil
}

func (s *MemModStore) AddAppeal(ctx context.Context, userID string, ap Appeal) error {
	rec := s.record(userID)
	rec.mu.Lock()
	rec.meta.Appeals = append(rec.meta.Appeals, ap)
	rec.mu.Unlock()
	s.appealIndex.Store(ap.ID, userID)
	return nil
}

func (s *MemModStore) FindAppealOwner(ctx context.Context, appealID string) (string, bool, error) {
	userID, ok := s.appealIndex.Load(appealID)
	return userID, ok, nil
}

func (s *MemModStore) UpdateAppeal(ctx context.Context, userID, appealID string, status AppealStatus, response string) error {
	rec, loaded := s.users.Load(userID)
	if !loaded {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := range rec.meta.Appeals {
		if rec.meta.Appeals[i].ID == appealID {
			rec.meta.Appeals[i].Status = status
			rec.meta.Appeals[i].ModeratorResponse = response
			break
		}
	}
	return nil
}
