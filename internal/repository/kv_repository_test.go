package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

func TestKVUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVUserRepository(kv.NewMemoryStore(), zap.NewNop())

	account := &models.Account{Email: "a@b.c", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, account))
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	err := repo.CreateUser(ctx, &models.Account{Email: "a@b.c", PasswordHash: "other"})
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)

	byEmail, err := repo.GetUserByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetUserByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", byID.Email)

	_, err = repo.GetUserByEmail(ctx, "nobody@b.c")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestKVUserRepository_BackendFailure(t *testing.T) {
	slots := kv.NewMemoryStore()
	slots.FailWith(errors.New("down"))
	repo := NewKVUserRepository(slots, zap.NewNop())

	err := repo.CreateUser(context.Background(), &models.Account{Email: "a@b.c"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestKVTokenRepository(t *testing.T) {
	ctx := context.Background()
	slots := kv.NewMemoryStore()
	repo := NewKVTokenRepository(slots, zap.NewNop()).(*kvTokenRepository)
	now := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return now }

	td := &models.TokenDetails{AccessUUID: "abc", AtExpires: now.Add(time.Hour).Unix()}
	require.NoError(t, repo.SetToken(ctx, "user-1", td))

	uid, err := repo.GetUserIDByAccessUUID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	n, err := repo.DeleteToken(ctx, "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.DeleteToken(ctx, "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = repo.GetUserIDByAccessUUID(ctx, "abc")
	assert.ErrorIs(t, err, models.ErrTokenNotFound)
}

func TestKVTokenRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	slots := kv.NewMemoryStore()
	repo := NewKVTokenRepository(slots, zap.NewNop()).(*kvTokenRepository)
	now := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.SetToken(ctx, "user-1", &models.TokenDetails{AccessUUID: "old", AtExpires: now.Add(time.Minute).Unix()}))
	now = now.Add(2 * time.Minute)

	_, err := repo.GetUserIDByAccessUUID(ctx, "old")
	assert.ErrorIs(t, err, models.ErrTokenNotFound)
	_, err = slots.Get(ctx, accessKey("old"))
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
}
