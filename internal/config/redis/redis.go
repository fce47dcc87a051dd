package redis

import (
	"context"
	"time"

	"go-identity-core/internal/config/env"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedis initializes and returns a Redis client connection. Returns nil
// when Redis is disabled; the cache layers treat a nil client as absent.
func NewRedis(log *logrus.Logger, config *env.Config) *redis.Client {
	if !config.Redis.Enabled {
		log.Info("Redis disabled, running with in-process caches only")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,

		PoolSize:        config.Redis.Pool.Size,
		MinIdleConns:    config.Redis.Pool.MinIdle,
		MaxIdleConns:    config.Redis.Pool.MaxIdle,
		ConnMaxLifetime: time.Duration(config.Redis.Pool.Lifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(config.Redis.Pool.IdleTimeout) * time.Second,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}

	log.Info("Redis connection established successfully")
	return rdb
}
