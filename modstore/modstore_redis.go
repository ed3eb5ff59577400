package modstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisMetaPrefix   string = "usermeta/"
	redisAppealPrefix string = "appealidx/"
)

// RedisModStore persists moderation records as JSON blobs, one per user, plus
// plain appealID->userID index keys. Record mutations are read-modify-write;
// per-user write contention is expected to be negligible for this workload.
type RedisModStore struct {
	Client *redis.Client
}

var _ ModStore = (*RedisModStore)(nil)

func NewRedisModStore(redisURL string) (*RedisModStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisModStore{
		Client: rdb,
	}, nil
}

func (s *RedisModStore) load(ctx context.Context, userID string) (UserMeta, bool, error) {
	raw, err := s.Client.Get(ctx, redisMetaPrefix+userID).Bytes()
	if err == redis.Nil {
		return UserMeta{}, false, nil
	} else if err != nil {
		return UserMeta{}, false, err
	}
	var meta UserMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return UserMeta{}, false, fmt.Errorf("corrupt moderation record for %s: %w", userID, err)
	}
	return meta, true, nil
}

func (s *RedisModStore) save(ctx context.Context, meta UserMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, redisMetaPrefix+meta.UserID, raw, 0).Err()
}

func (s *RedisModStore) fetchOrCreate(ctx context.Context, userID string) (UserMeta, error) {
	meta, found, err := s.load(ctx, userID)
	if err != nil {
		return UserMeta{}, err
	}
	if found {
		return meta, nil
	}
	now := time.Now().UTC()
	meta = UserMeta{
		UserID:          userID,
		AccountCreated:  now,
		LastActivity:    now,
		ShadowbanStatus: ShadowbanNone,
	}
	// SetNX so concurrent first-access keeps a single record
	raw, err := json.Marshal(meta)
	if err != nil {
		return UserMeta{}, err
	}
	set, err := s.Client.SetNX(ctx, redisMetaPrefix+userID, raw, 0).Result()
	if err != nil {
		return UserMeta{}, err
	}
	if !set {
		meta, _, err = s.load(ctx, userID)
		return meta, err
	}
	return meta, nil
}

func (s *RedisModStore) GetMeta(ctx context.Context, userID string) (UserMeta, error) {
	return s.fetchOrCreate(ctx, userID)
}

func (s *RedisModStore) SetAccountCreated(ctx context.Context, userID string, ts time.Time) error {
	meta, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	meta.AccountCreated = ts
	return s.save(ctx, meta)
}

func (s *RedisModStore) TouchActivity(ctx context.Context, userID string) error {
	meta, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	meta.LastActivity = time.Now().UTC()
	return s.save(ctx, meta)
}

func (s *RedisModStore) SetShadowban(ctx context.Context, userID string, status ShadowbanStatus, reason string) error {
	meta, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	meta.ShadowbanStatus = status
	meta.ShadowbanReason = reason
	if status == ShadowbanNone {
		meta.ShadowbanReason = ""
	}
	return s.save(ctx, meta)
}

func (s *RedisModStore) AddAppeal(ctx context.Context, userID string, ap Appeal) error {
	meta, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	meta.Appeals = append(meta.Appeals, ap)
	if err := s.save(ctx, meta); err != nil {
		return err
	}
	return s.Client.Set(ctx, redisAppealPrefix+ap.ID, userID, 0).Err()
}

func (s *RedisModStore) FindAppealOwner(ctx context.Context, appealID string) (string, bool, error) {
	userID, err := s.Client.Get(ctx, redisAppealPrefix+appealID).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (s *RedisModStore) UpdateAppeal(ctx context.Context, userID, appealID string, status AppealStatus, response string) error {
	meta, found, err := s.load(ctx, userID)
	if err != nil || !found {
		return err
	}
	for i := range meta.Appeals {
		if meta.Appeals[i].ID == appealID {
			meta.Appeals[i].Status = status
			meta.Appeals[i].ModeratorResponse = response
			break
		}
	}
	return s.save(ctx, meta)
}
