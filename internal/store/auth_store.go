package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// AuthStore holds the client session: anonymous, or a user with a token.
type AuthStore struct {
	mu      sync.Mutex
	session models.Session
	slots   kv.Store
	logger  *zap.Logger
}

// NewAuthStore creates an anonymous session store over slots.
func NewAuthStore(slots kv.Store, logger *zap.Logger) *AuthStore {
	return &AuthStore{slots: slots, logger: logger.Named("AuthStore")}
}

// SetAuthData sets the in-memory session. The user and token are persisted
// only when both are non-nil.
func (s *AuthStore) SetAuthData(ctx context.Context, user *models.User, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{User: cloneUser(user), Token: cloneString(token)}
	if user == nil || token == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: marshal user: %v", models.ErrPersistence, err)
	}
	if err := s.slots.Set(ctx, UserKey, string(data)); err != nil {
		s.logger.Error("Failed to persist session user", zap.String("userID", user.ID), zap.Error(err))
		return fmt.Errorf("%w: write %s: %w", models.ErrPersistence, UserKey, err)
	}
	if err := s.slots.Set(ctx, TokenKey, *token); err != nil {
		s.logger.Error("Failed to persist session token", zap.String("userID", user.ID), zap.Error(err))
		return fmt.Errorf("%w: write %s: %w", models.ErrPersistence, TokenKey, err)
	}
	s.logger.Debug("Session persisted", zap.String("userID", user.ID))
	return nil
}

// Logout clears the session and deletes both persisted slots.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{}
	if err := s.slots.Delete(ctx, UserKey, TokenKey); err != nil {
		s.logger.Error("Failed to delete persisted session", zap.Error(err))
		return fmt.Errorf("%w: delete session: %w", models.ErrPersistence, err)
	}
	return nil
}

// Session returns a copy of the current session.
func (s *AuthStore) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Session{User: cloneUser(s.session.User), Token: cloneString(s.session.Token)}
}

// State reports whether the session is anonymous or authenticated.
func (s *AuthStore) State() models.SessionState {
	return s.Session().State()
}

// Hydrate restores a persisted session. Both slots must be readable;
// otherwise the session stays anonymous.
func (s *AuthStore) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawUser, err := s.slots.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, models.ErrKeyNotFound) {
			s.logger.Error("Failed to load session user", zap.Error(err))
		}
		return
	}
	token, err := s.slots.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, models.ErrKeyNotFound) {
			s.logger.Error("Failed to load session token", zap.Error(err))
		}
		return
	}
	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Error("Failed to parse session user", zap.Error(err))
		return
	}
	s.session = models.Session{User: &user, Token: &token}
	s.logger.Info("Session restored", zap.String("userID", user.ID))
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
