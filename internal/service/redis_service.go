package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisService wraps the shared cache client. A nil *RedisService is a valid
// receiver and behaves as an always-missing cache, so callers need no
// branching when Redis is disabled.
type RedisService struct {
	client redisClient
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewRedisService(client *redis.Client, logger *logrus.Logger) *RedisService {
	if client == nil {
		return nil
	}
	return &RedisService{client, logger, otel.Tracer("RedisService")}
}

// Get retrieves a string value from Redis.
func (r *RedisService) Get(ctx context.Context, key string) (string, bool) {
	if r == nil {
		return "", false
	}
	spanCtx, span := r.tracer.Start(ctx, "RedisService.Get")
	defer span.End()

	cached, err := r.client.Get(spanCtx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		r.logger.WithContext(spanCtx).WithError(err).Error("Redis get error")
		return "", false
	}
	return cached, true
}

// Set marshals value to JSON and stores it in Redis with TTL.
func (r *RedisService) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	if r == nil {
		return nil
	}
	spanCtx, span := r.tracer.Start(ctx, "RedisService.Set")
	defer span.End()

	logger := r.logger.WithContext(spanCtx)

	payload, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Warn("Failed to marshal cache payload")
		return err
	}
	if err := r.client.Set(spanCtx, key, payload, ttl).Err(); err != nil {
		logger.WithError(err).Error("Failed to store data to redis")
		return err
	}
	return nil
}

func (r *RedisService) Del(ctx context.Context, keys ...string) {
	if r == nil || len(keys) == 0 {
		return
	}
	spanCtx, span := r.tracer.Start(ctx, "RedisService.Del")
	defer span.End()

	if err := r.client.Del(spanCtx, keys...).Err(); err != nil {
		r.logger.WithContext(spanCtx).WithError(err).Error("Failed to delete redis keys")
	}
}

// Exists reports whether the key is present. Errors degrade to absent.
func (r *RedisService) Exists(ctx context.Context, key string) bool {
	if r == nil {
		return false
	}
	spanCtx, span := r.tracer.Start(ctx, "RedisService.Exists")
	defer span.End()

	n, err := r.client.Exists(spanCtx, key).Result()
	if err != nil {
		r.logger.WithContext(spanCtx).WithError(err).Error("Redis exists error")
		return false
	}
	return n > 0
}
