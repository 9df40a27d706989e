package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// ExistsFn checks whether a cache handle still exists on the remote provider.
type ExistsFn func(ctx context.Context, handle string) bool

// ContextCacheManager keeps the local context-cache records consistent with
// the remote provider's authoritative state. The provider limits concurrent
// cached contents independently of prompts, so activation is treated as a
// global resource: at most one record is active across the whole store.
//
// Every operation is best-effort. A broken record store or provider means "no
// cache" and the caller generates uncached; it never blocks a response.
type ContextCacheManager struct {
	repo   domain.IContextCacheRepository
	remote domain.IRemoteContextCache
	ttl    time.Duration
}

func NewContextCacheManager(repo domain.IContextCacheRepository, remote domain.IRemoteContextCache, ttl time.Duration) *ContextCacheManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ContextCacheManager{repo: repo, remote: remote, ttl: ttl}
}

// ValidateAndGet returns a usable cache handle for the prompt, or absent.
// Expired records and records the remote no longer knows about are
// invalidated on the way out. existsFn may be nil to skip the remote check.
func (m *ContextCacheManager) ValidateAndGet(ctx context.Context, promptID string, existsFn ExistsFn) (string, bool) {
	if promptID == "" {
		return "", false
	}

	record, err := m.repo.LatestActive(ctx, promptID)
	if err != nil {
		return "", false
	}

	if !record.ExpireTime.IsZero() && time.Now().UTC().After(record.ExpireTime.UTC()) {
		logrus.WithFields(logrus.Fields{
			"prompt_id":    promptID,
			"cache_handle": record.CacheHandle,
		}).Info("[CONTEXT_CACHE] Record expired, invalidating")
		m.Invalidate(ctx, record.CacheHandle)
		return "", false
	}

	if existsFn != nil && !existsFn(ctx, record.CacheHandle) {
		logrus.WithFields(logrus.Fields{
			"prompt_id":    promptID,
			"cache_handle": record.CacheHandle,
		}).Warn("[CONTEXT_CACHE] Handle missing remotely, invalidating")
		m.Invalidate(ctx, record.CacheHandle)
		return "", false
	}

	return record.CacheHandle, true
}

// Invalidate deactivates every record with the handle. Idempotent.
func (m *ContextCacheManager) Invalidate(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := m.repo.DeactivateByHandle(ctx, handle); err != nil {
		logrus.WithError(err).WithField("cache_handle", handle).
			Warn("[CONTEXT_CACHE] Failed to deactivate record")
	}
}

// Create provisions a new cache on the remote provider. On any failure the
// caller falls back to uncached generation.
func (m *ContextCacheManager) Create(ctx context.Context, promptID, systemInstruction string) (domain.RemoteCacheInfo, bool) {
	info, err := m.remote.CreateCachedContext(ctx, systemInstruction, m.ttl)
	if err != nil {
		logrus.WithError(err).WithField("prompt_id", promptID).
			Warn("[CONTEXT_CACHE] Remote cache creation failed, falling back to uncached generation")
		return domain.RemoteCacheInfo{}, false
	}

	logrus.WithFields(logrus.Fields{
		"prompt_id":    promptID,
		"cache_handle": info.Handle,
		"expire_time":  info.ExpireTime,
	}).Info("[CONTEXT_CACHE] Remote cache created")
	return info, true
}

// Save records a freshly provisioned cache as the single active record:
// deactivate everything first, then insert. A crash between the two steps
// leaves zero active records, which is safe: the next ValidateAndGet simply
// misses and a new cache is created.
func (m *ContextCacheManager) Save(ctx context.Context, promptID, handle string, expireTime time.Time) {
	if err := m.repo.DeactivateAll(ctx); err != nil {
		logrus.WithError(err).Warn("[CONTEXT_CACHE] Failed to deactivate existing records")
		return
	}

	record := domain.ContextCacheRecord{
		PromptID:    promptID,
		CacheHandle: handle,
		IsActive:    true,
		ExpireTime:  expireTime,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.repo.Insert(ctx, record); err != nil {
		logrus.WithError(err).WithField("cache_handle", handle).
			Warn("[CONTEXT_CACHE] Failed to insert cache record")
	}
}

// RemoteExists adapts the configured provider's existence check to an ExistsFn.
func (m *ContextCacheManager) RemoteExists() ExistsFn {
	return func(ctx context.Context, handle string) bool {
		return m.remote.CachedContextExists(ctx, handle)
	}
}
