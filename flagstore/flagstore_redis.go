package flagstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var redisFlagPrefix string = "flagged/"

// Stored history is capped well above the repeat-detection window so the
// lists stay bounded.
var redisFlagHistoryMax int64 = 100

type RedisFlagStore struct {
	Client *redis.Client
}

var _ FlagStore = (*RedisFlagStore)(nil)

func NewRedisFlagStore(redisURL string) (*RedisFlagStore, error) {
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
	return &RedisFlagStore{
		Client: rdb,
	}, nil
}

func (s *RedisFlagStore) Recent(ctx context.Context, userID string, n int) ([]string, error) {
	key := redisFlagPrefix + userID
	vals, err := s.Client.LRange(ctx, key, 0, int64(n)-1).Result()
	if err == redis.Nil {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}
	// LPUSH stores newest-first; reverse to oldest-first
	out := make([]string, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v
	}
	return out, nil
}

func (s *RedisFlagStore) Append(ctx context.Context, userID, content string) error {
	key := redisFlagPrefix + userID
	multi := s.Client.Pipeline()
	multi.LPush(ctx, key, content)
	multi.LTrim(ctx, key, 0, redisFlagHistoryMax-1)
	_, err := multi.Exec(ctx)
	return err
}
