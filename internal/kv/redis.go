package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure redisStore implements Store
var _ Store = (*redisStore)(nil)

type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed Store. Slots never expire.
func NewRedisStore(client *redis.Client, logger *zap.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.Named("RedisKV"),
	}
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", models.ErrKeyNotFound
		}
		r.logger.Error("Failed to get slot from redis", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get slot %q from redis: %w", key, err)
	}
	return val, nil
}

func (r *redisStore) Set(ctx context.Context, key, value string) error {
	r.logger.Debug("Writing slot to redis", zap.String("key", key), zap.Int("bytes", len(value)))
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Error("Failed to set slot in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set slot %q in redis: %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to delete slots from redis", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("failed to delete slots from redis: %w", err)
	}
	return nil
}
