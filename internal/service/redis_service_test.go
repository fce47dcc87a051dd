package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// fakeRedis implements redisClient over a map. TTLs are recorded but only
// enforced when asked, since tests never sleep.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}
	f.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttls, key)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func newFakeRedisService(client redisClient) *RedisService {
	return &RedisService{client: client, logger: silentLogger(), tracer: otel.Tracer("RedisService")}
}

func TestRedisService(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	svc := newFakeRedisService(fake)

	_, ok := svc.Get(ctx, "missing")
	require.False(t, ok)

	require.NoError(t, svc.Set(ctx, "key", []string{"a", "b"}, time.Minute))
	cached, ok := svc.Get(ctx, "key")
	require.True(t, ok)
	require.JSONEq(t, `["a","b"]`, cached)
	require.True(t, svc.Exists(ctx, "key"))

	svc.Del(ctx, "key")
	require.False(t, svc.Exists(ctx, "key"))
}

func TestRedisServiceNilReceiver(t *testing.T) {
	ctx := context.Background()
	var svc *RedisService

	_, ok := svc.Get(ctx, "key")
	require.False(t, ok)
	require.NoError(t, svc.Set(ctx, "key", "v", time.Minute))
	require.False(t, svc.Exists(ctx, "key"))
	svc.Del(ctx, "key")

	require.Nil(t, NewRedisService(nil, silentLogger()))
}

func TestRevocationCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	cache := NewRevocationCache(newFakeRedisService(fake))

	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Add(ctx, "s1", now.Add(time.Hour))
	require.True(t, cache.Revoked(ctx, "s1"))
	require.False(t, cache.Revoked(ctx, "s2"))

	// The entry lives only until the session's natural expiry.
	require.Equal(t, time.Hour, fake.ttls[revocationKey("s1")])

	// Already-expired sessions need no entry at all.
	cache.Add(ctx, "s3", now.Add(-time.Minute))
	require.False(t, cache.Revoked(ctx, "s3"))
}
