package countstore

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisCountPrefix string = "count/"

// Retention safety margin: buckets expire server-side a day after the cleanup
// window would have removed them anyway.
var redisBucketTTL = 8 * 24 * time.Hour

type RedisCountStore struct {
	Client *redis.Client
}

var _ CountStore = (*RedisCountStore)(nil)

func NewRedisCountStore(redisURL string) (*RedisCountStore, error) {
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
	rcs := RedisCountStore{
		Client: rdb,
	}
	return &rcs, nil
}

// comment and like buckets are never expired, matching the in-memory store's
// cleanup behavior which only prunes dm and post buckets.
func bucketExpires(category string) bool {
	return category == CategoryDM || category == CategoryPost
}

func (s *RedisCountStore) GetCount(ctx context.Context, category, userID, period string) (int, error) {
	key := redisCountPrefix + periodBucket(category, userID, period)
	c, err := s.Client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisCountStore) Increment(ctx context.Context, category, userID, period string) error {
	key := redisCountPrefix + periodBucket(category, userID, period)
	multi := s.Client.Pipeline()
	multi.Incr(ctx, key)
	if bucketExpires(category) {
		multi.Expire(ctx, key, redisBucketTTL)
	}
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisCountStore) TryIncrement(ctx context.Context, category, userID, period string, limit int) (bool, int, error) {
	key := redisCountPrefix + periodBucket(category, userID, period)
	c, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if int(c) > limit {
		// overshoot: roll back the speculative increment
		if err := s.Client.Decr(ctx, key).Err(); err != nil {
			return false, int(c) - 1, err
		}
		return false, int(c) - 1, nil
	}
	if bucketExpires(category) {
		if err := s.Client.Expire(ctx, key, redisBucketTTL).Err(); err != nil {
			return true, int(c), err
		}
	}
	return true, int(c), nil
}

func (s *RedisCountStore) TotalCount(ctx context.Context, category, userID string) (int, error) {
	match := redisCountPrefix + category + "/" + userID + "/*"
	total := 0
	iter := s.Client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		c, err := s.Client.Get(ctx, iter.Val()).Int()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return 0, err
		}
		total += c
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *RedisCountStore) TrimBefore(ctx context.Context, cutoff time.Time, categories []string) (int, error) {
	removed := 0
	for _, cat := range categories {
		match := redisCountPrefix + cat + "/*"
		iter := s.Client.Scan(ctx, 0, match, 100).Iterator()
		for iter.Next(ctx) {
			key := strings.TrimPrefix(iter.Val(), redisCountPrefix)
			t := bucketTime(key)
			if t.IsZero() || !t.Before(cutoff) {
				continue
			}
			if err := s.Client.Del(ctx, iter.Val()).Err(); err != nil {
				return removed, err
			}
			removed++
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}
