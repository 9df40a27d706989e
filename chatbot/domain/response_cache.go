package domain

import (
	"context"
	"time"
)

// IResponseCacheRepository is a plain key-value store with TTL used by the
// exact-match response cache. Keys are content fingerprints computed by the
// cache service, so they survive process restarts.
type IResponseCacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
