package cachestore

import (
	"context"
)

// CacheStore is a lossy string cache with TTL, namespaced by name. Used by the
// engine to memoize pattern-classification decisions. A miss returns the empty
// string and no error.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
