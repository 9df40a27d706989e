package domain

import (
	"context"
	"time"
)

// ContextCacheRecord mirrors one provider-side context cache in the local
// record store. Records are deactivated, never deleted, so the history of
// provisioned caches stays auditable.
type ContextCacheRecord struct {
	ID          string
	PromptID    string
	CacheHandle string
	IsActive    bool
	ExpireTime  time.Time
	CreatedAt   time.Time
}

// IContextCacheRepository is the local bookkeeping store for provider-side
// context caches. At most one record is active across the whole store at any
// time; the manager enforces this through DeactivateAll before Insert.
type IContextCacheRepository interface {
	// LatestActive returns the newest active record for the prompt,
	// ordered by creation time descending.
	LatestActive(ctx context.Context, promptID string) (ContextCacheRecord, error)

	// DeactivateByHandle flips is_active off for every record with the
	// given handle. Idempotent.
	DeactivateByHandle(ctx context.Context, handle string) error

	// DeactivateAll flips is_active off store-wide.
	DeactivateAll(ctx context.Context) error

	Insert(ctx context.Context, record ContextCacheRecord) error
}

// RemoteCacheInfo is what the provider reports after provisioning a cache.
// ExpireTime is the provider's authoritative value.
type RemoteCacheInfo struct {
	Handle     string
	ExpireTime time.Time
}

// IRemoteContextCache is the provider-side context cache API. Handles are
// opaque strings.
type IRemoteContextCache interface {
	CreateCachedContext(ctx context.Context, systemInstruction string, ttl time.Duration) (RemoteCacheInfo, error)
	CachedContextExists(ctx context.Context, handle string) bool
}
