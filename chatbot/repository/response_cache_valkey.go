package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/turinglabs/kbchat/infrastructure/valkey"
)

// ValkeyResponseCache implements domain.IResponseCacheRepository using plain
// string keys with a native TTL. Overwrite on key collision is last-write-wins.
type ValkeyResponseCache struct {
	client *valkey.Client
}

func NewValkeyResponseCache(client *valkey.Client) *ValkeyResponseCache {
	return &ValkeyResponseCache{client: client}
}

func (r *ValkeyResponseCache) fullKey(key string) string {
	return r.client.Key("chat", key)
}

func (r *ValkeyResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	inner := r.client.Inner()
	cmd := inner.B().Get().Key(r.fullKey(key)).Build()

	value, err := inner.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached response: %w", err)
	}
	return value, true, nil
}

func (r *ValkeyResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	inner := r.client.Inner()
	cmd := inner.B().Set().Key(r.fullKey(key)).Value(value).Ex(ttl).Build()

	if err := inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached response: %w", err)
	}
	return nil
}
