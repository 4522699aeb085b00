package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
	"storyboard-server/internal/repository"
	"storyboard-server/internal/repository/mocks"
)

var testConfig = Config{
	JWTSecret:      "test-secret",
	PasswordPepper: "test-pepper",
	AccessTokenTTL: time.Hour,
	DemoLogin:      true,
}

func newKVService(t *testing.T) *serviceImpl {
	t.Helper()
	slots := kv.NewMemoryStore()
	logger := zap.NewNop()
	return NewService(
		repository.NewKVUserRepository(slots, logger),
		repository.NewKVTokenRepository(slots, logger),
		testConfig, logger,
	).(*serviceImpl)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := hashPassword("secret", "pepper")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, checkPasswordHash("secret", hash, "pepper"))
	assert.False(t, checkPasswordHash("wrong", hash, "pepper"))
	assert.False(t, checkPasswordHash("secret", hash, "other-pepper"))
	assert.False(t, checkPasswordHash("secret", "not-a-bcrypt-hash", "pepper"))
}

func TestRegisterLoginVerifyLogout(t *testing.T) {
	ctx := context.Background()
	s := newKVService(t)

	user, td, err := s.Register(ctx, "  Writer@Example.com ", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "writer@example.com", user.Email)
	assert.NotEmpty(t, td.AccessToken)

	_, _, err = s.Register(ctx, "writer@example.com", "again")
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)

	td, loggedIn, err := s.Login(ctx, "WRITER@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := s.VerifyAccessToken(ctx, td.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, td.AccessUUID, claims.ID)

	require.NoError(t, s.Logout(ctx, claims.ID))
	_, err = s.VerifyAccessToken(ctx, td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	require.NoError(t, s.Logout(ctx, claims.ID), "second logout is a no-op")
}

func TestLogin_WrongCredentials(t *testing.T) {
	ctx := context.Background()
	s := newKVService(t)
	_, _, err := s.Register(ctx, "a@b.co", "right")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody@b.co", "right")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegister_InvalidInput(t *testing.T) {
	s := newKVService(t)
	for _, tc := range []struct{ email, password string }{
		{"", "pw"},
		{"a@b.co", ""},
		{"not-an-email", "pw"},
	} {
		_, _, err := s.Register(context.Background(), tc.email, tc.password)
		assert.ErrorIs(t, err, models.ErrInvalidInput, tc.email)
	}
}

func TestDemoLogin(t *testing.T) {
	ctx := context.Background()
	s := newKVService(t)

	td, user, err := s.Login(ctx, credentials.DemoUsername, credentials.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, credentials.DemoToken, td.AccessToken)
	assert.Equal(t, credentials.DemoUsername, user.ID)

	_, _, err = s.Login(ctx, credentials.DemoUsername, "nope")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	claims, err := s.VerifyAccessToken(ctx, credentials.DemoToken)
	require.NoError(t, err)
	assert.Equal(t, credentials.DemoUsername, claims.UserID)
	assert.NoError(t, s.Logout(ctx, credentials.DemoToken))
}

func TestDemoLoginDisabled(t *testing.T) {
	cfg := testConfig
	cfg.DemoLogin = false
	slots := kv.NewMemoryStore()
	s := NewService(repository.NewKVUserRepository(slots, zap.NewNop()),
		repository.NewKVTokenRepository(slots, zap.NewNop()), cfg, zap.NewNop())

	_, _, err := s.Login(context.Background(), credentials.DemoUsername, credentials.DemoPassword)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = s.VerifyAccessToken(context.Background(), credentials.DemoToken)
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	ctx := context.Background()
	s := newKVService(t)
	_, td, err := s.Register(ctx, "a@b.co", "pw")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.VerifyAccessToken(ctx, td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	ctx := context.Background()
	s := newKVService(t)
	_, td, err := s.Register(ctx, "a@b.co", "pw")
	require.NoError(t, err)

	s.cfg.JWTSecret = "rotated"
	_, err = s.VerifyAccessToken(ctx, td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestLogin_TokenStoreFailure(t *testing.T) {
	ctx := context.Background()
	users := new(mocks.UserRepository)
	tokens := new(mocks.TokenRepository)
	s := NewService(users, tokens, testConfig, zap.NewNop())

	hash, err := hashPassword("pw", testConfig.PasswordPepper)
	require.NoError(t, err)
	users.On("GetUserByEmail", mock.Anything, "a@b.co").
		Return(&models.Account{ID: "u1", Email: "a@b.co", PasswordHash: hash}, nil)
	tokens.On("SetToken", mock.Anything, "u1", mock.AnythingOfType("*models.TokenDetails")).
		Return(errors.New("redis down"))

	_, _, err = s.Login(ctx, "a@b.co", "pw")
	assert.ErrorContains(t, err, "redis down")
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogout_RepositoryFailure(t *testing.T) {
	tokens := new(mocks.TokenRepository)
	s := NewService(new(mocks.UserRepository), tokens, testConfig, zap.NewNop())
	tokens.On("DeleteToken", mock.Anything, "abc").Return(int64(0), errors.New("boom"))

	assert.Error(t, s.Logout(context.Background(), "abc"))
}
