package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// Compile-time check to ensure kvTokenRepository implements TokenRepository
var _ TokenRepository = (*kvTokenRepository)(nil)

// kvTokenRepository stores the expiry next to the user id and treats stale
// entries as missing, since slot backends have no TTL.
type kvTokenRepository struct {
	slots  kv.Store
	logger *zap.Logger
	now    func() time.Time
}

type tokenEntry struct {
	UserID    string `json:"uid"`
	ExpiresAt int64  `json:"exp"`
}

// NewKVTokenRepository creates a TokenRepository over slots.
func NewKVTokenRepository(slots kv.Store, logger *zap.Logger) TokenRepository {
	return &kvTokenRepository{
		slots:  slots,
		logger: logger.Named("KVTokenRepo"),
		now:    time.Now,
	}
}

func (r *kvTokenRepository) SetToken(ctx context.Context, userID string, td *models.TokenDetails) error {
	raw, err := json.Marshal(tokenEntry{UserID: userID, ExpiresAt: td.AtExpires})
	if err != nil {
		return fmt.Errorf("failed to encode token entry: %w", err)
	}
	if err := r.slots.Set(ctx, accessKey(td.AccessUUID), string(raw)); err != nil {
		r.logger.Error("Failed to store token", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *kvTokenRepository) DeleteToken(ctx context.Context, accessUUID string) (int64, error) {
	key := accessKey(accessUUID)
	if _, err := r.slots.Get(ctx, key); err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up token: %w", err)
	}
	if err := r.slots.Delete(ctx, key); err != nil {
		return 0, fmt.Errorf("failed to delete token: %w", err)
	}
	return 1, nil
}

func (r *kvTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (string, error) {
	key := accessKey(accessUUID)
	raw, err := r.slots.Get(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			return "", models.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to look up token: %w", err)
	}
	var entry tokenEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		r.logger.Error("Corrupted token entry", zap.String("accessUUID", accessUUID), zap.Error(err))
		return "", models.ErrTokenNotFound
	}
	if r.now().Unix() >= entry.ExpiresAt {
		if err := r.slots.Delete(ctx, key); err != nil {
			r.logger.Warn("Failed to drop expired token", zap.String("accessUUID", accessUUID), zap.Error(err))
		}
		return "", models.ErrTokenNotFound
	}
	return entry.UserID, nil
}
