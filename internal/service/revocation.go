package service

import (
	"context"
	"fmt"
	"time"
)

// RevocationCache is the fast-path lookup for revoked session IDs. The
// session store stays authoritative; the cache only short-circuits lookups,
// so a cache miss always falls through to the store.
type RevocationCache struct {
	redis *RedisService
	now   func() time.Time
}

func NewRevocationCache(redis *RedisService) *RevocationCache {
	return &RevocationCache{redis: redis, now: time.Now}
}

// Add records a revoked session until its natural expiry. Entries for
// already-expired sessions are skipped since expiry alone invalidates them.
func (c *RevocationCache) Add(ctx context.Context, sessionID string, expiresAt time.Time) {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	_ = c.redis.Set(ctx, revocationKey(sessionID), "1", ttl)
}

func (c *RevocationCache) Revoked(ctx context.Context, sessionID string) bool {
	return c.redis.Exists(ctx, revocationKey(sessionID))
}

func revocationKey(sessionID string) string {
	return fmt.Sprintf("session:revoked:%s", sessionID)
}
