package credentials

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
	"storyboard-server/internal/remote"
	"storyboard-server/internal/remote/mocks"
	"storyboard-server/internal/store"
)

func newSessions() (*store.AuthStore, *kv.MemoryStore) {
	slots := kv.NewMemoryStore()
	return store.NewAuthStore(slots, zap.NewNop()), slots
}

func TestLiteralChecker(t *testing.T) {
	ctx := context.Background()
	c := LiteralChecker{}

	resp, err := c.Login(ctx, "sm2025", "smcomputer")
	require.NoError(t, err)
	assert.Equal(t, "mock-token", resp.Token)

	for _, tc := range []struct{ id, pw string }{
		{"sm2025", "wrong"},
		{"someone", "smcomputer"},
		{"", ""},
		{"SM2025", "smcomputer"},
	} {
		_, err := c.Login(ctx, tc.id, tc.pw)
		require.Error(t, err)
		assert.Equal(t, "아이디 또는 비밀번호가 올바르지 않습니다.", err.Error())
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	_, err = c.Register(ctx, "a@b.c", "pw")
	assert.EqualError(t, err, MsgRegisterFailed)
}

func TestSignIn_WrongCredentialsLeaveSessionAnonymous(t *testing.T) {
	ctx := context.Background()
	sessions, slots := newSessions()

	_, err := SignIn(ctx, LiteralChecker{}, sessions, "sm2025", "nope")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())
	assert.Equal(t, models.SessionAnonymous, sessions.State())
	assert.Nil(t, sessions.Session().User)
	assert.Nil(t, sessions.Session().Token)
	assert.Zero(t, slots.Writes())
}

func TestSignIn_Success(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newSessions()

	resp, err := SignIn(ctx, LiteralChecker{}, sessions, "sm2025", "smcomputer")
	require.NoError(t, err)
	assert.Equal(t, DemoToken, resp.Token)

	s := sessions.Session()
	assert.Equal(t, models.SessionAuthenticated, s.State())
	assert.Equal(t, "sm2025", s.User.ID)
	assert.Equal(t, DemoToken, *s.Token)
}

func TestSignIn_BlankFieldsSkipChecker(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newSessions()
	backend := new(mocks.Store)

	_, err := SignIn(ctx, NewRemoteChecker(backend, zap.NewNop()), sessions, "  ", "pw")
	require.Error(t, err)
	assert.Equal(t, MsgLoginFieldsMissing, err.Error())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoteChecker_SurfacesBackendMessage(t *testing.T) {
	ctx := context.Background()
	backend := new(mocks.Store)
	backend.On("Login", mock.Anything, "kid", "pw").
		Return(nil, &remote.Error{StatusCode: http.StatusUnauthorized, Message: "계정이 잠겼습니다."}).Once()
	backend.On("Register", mock.Anything, "kid@example.com", "pw").
		Return(nil, errors.New("dial tcp: refused")).Once()

	c := NewRemoteChecker(backend, zap.NewNop())
	_, err := c.Login(ctx, "kid", "pw")
	assert.EqualError(t, err, "계정이 잠겼습니다.")
	assert.ErrorIs(t, err, models.ErrRemote)

	_, err = c.Register(ctx, "kid@example.com", "pw")
	assert.EqualError(t, err, MsgRegisterFailed)
	backend.AssertExpectations(t)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		sessions, _ := newSessions()
		backend := new(mocks.Store)
		c := NewRemoteChecker(backend, zap.NewNop())

		_, err := SignUp(ctx, c, sessions, "a@b.c", "pw", "")
		assert.EqualError(t, err, MsgSignUpFieldsMissing)
		_, err = SignUp(ctx, c, sessions, "a@b.c", "pw1", "pw2")
		assert.EqualError(t, err, MsgPasswordMismatch)
		backend.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success logs in", func(t *testing.T) {
		sessions, slots := newSessions()
		backend := new(mocks.Store)
		user := &models.User{ID: "42", Email: "a@b.c"}
		backend.On("Register", mock.Anything, "a@b.c", "secret1").
			Return(&models.AuthResponse{Token: "jwt", User: user}, nil).Once()

		_, err := SignUp(ctx, NewRemoteChecker(backend, zap.NewNop()), sessions, "a@b.c", "secret1", "secret1")
		require.NoError(t, err)
		assert.Equal(t, models.SessionAuthenticated, sessions.State())
		assert.Equal(t, "42", sessions.Session().User.ID)
		tok, err := slots.Get(ctx, store.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "jwt", tok)
		backend.AssertExpectations(t)
	})
}

func TestSignIn_PersistenceFailureIsReported(t *testing.T) {
	ctx := context.Background()
	sessions, slots := newSessions()
	slots.FailWith(errors.New("read-only"))

	resp, err := SignIn(ctx, LiteralChecker{}, sessions, "sm2025", "smcomputer")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistence)
	require.NotNil(t, resp)
	assert.Equal(t, DemoToken, resp.Token)
}
