package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure redisTokenRepository implements TokenRepository
var _ TokenRepository = (*redisTokenRepository)(nil)

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a Redis-backed TokenRepository. Entries
// expire with the token.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func (r *redisTokenRepository) SetToken(ctx context.Context, userID string, td *models.TokenDetails) error {
	ttl := time.Until(time.Unix(td.AtExpires, 0))
	if ttl <= 0 {
		return fmt.Errorf("token %s already expired", td.AccessUUID)
	}
	r.logger.Debug("Setting token in Redis", zap.String("userID", userID), zap.String("accessUUID", td.AccessUUID), zap.Duration("ttl", ttl))
	if err := r.client.Set(ctx, accessKey(td.AccessUUID), userID, ttl).Err(); err != nil {
		r.logger.Error("Failed to set token in redis", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("failed to set token in redis: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) DeleteToken(ctx context.Context, accessUUID string) (int64, error) {
	n, err := r.client.Del(ctx, accessKey(accessUUID)).Result()
	if err != nil {
		r.logger.Error("Failed to delete token from redis", zap.Error(err), zap.String("accessUUID", accessUUID))
		return 0, fmt.Errorf("failed to delete token from redis: %w", err)
	}
	return n, nil
}

func (r *redisTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (string, error) {
	userID, err := r.client.Get(ctx, accessKey(accessUUID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.Error(err), zap.String("accessUUID", accessUUID))
		return "", fmt.Errorf("failed to get token from redis: %w", err)
	}
	return userID, nil
}
