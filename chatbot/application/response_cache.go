package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// ResponseCache is the exact-match, short-TTL cache from a
// (conversation, query) fingerprint to a previously generated answer. A broken
// backing store degrades to a permanent miss; it never fails a request.
type ResponseCache struct {
	repo domain.IResponseCacheRepository
	ttl  time.Duration
}

func NewResponseCache(repo domain.IResponseCacheRepository, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResponseCache{repo: repo, ttl: ttl}
}

// fingerprint derives a stable cache key from the conversation and the raw
// query text. Content-based hashing keeps keys identical across process
// restarts, which is what makes cache hits possible at all.
func (c *ResponseCache) fingerprint(conversationID, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%s", conversationID, hex.EncodeToString(sum[:]))
}

// Get returns the cached answer for the pair, if present and unexpired.
func (c *ResponseCache) Get(ctx context.Context, conversationID, query string) (string, bool) {
	value, ok, err := c.repo.Get(ctx, c.fingerprint(conversationID, query))
	if err != nil {
		logrus.WithError(err).Warn("[CACHE] Response cache read failed, treating as miss")
		return "", false
	}
	return value, ok
}

// Set stores the answer with the default TTL. Last write wins on collision.
func (c *ResponseCache) Set(ctx context.Context, conversationID, query, value string) {
	c.SetWithTTL(ctx, conversationID, query, value, c.ttl)
}

func (c *ResponseCache) SetWithTTL(ctx context.Context, conversationID, query, value string, ttl time.Duration) {
	if err := c.repo.Set(ctx, c.fingerprint(conversationID, query), value, ttl); err != nil {
		logrus.WithError(err).Warn("[CACHE] Response cache write failed")
	}
}
