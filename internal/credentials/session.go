package credentials

import (
	"context"
	"fmt"
	"strings"

	"storyboard-server/internal/models"
	"storyboard-server/internal/store"
)

// SignIn validates the form, checks the credentials and, only on success,
// stores the session. A failed check leaves the session untouched.
func SignIn(ctx context.Context, checker Checker, sessions *store.AuthStore, identifier, secret string) (*models.AuthResponse, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return nil, &Error{Message: MsgLoginFieldsMissing, Err: models.ErrInvalidInput}
	}
	resp, err := checker.Login(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}
	if err := storeSession(ctx, sessions, resp, identifier); err != nil {
		return resp, err
	}
	return resp, nil
}

// SignUp validates the registration form, registers and logs the user in.
func SignUp(ctx context.Context, checker Checker, sessions *store.AuthStore, email, password, confirm string) (*models.AuthResponse, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(confirm) == "" {
		return nil, &Error{Message: MsgSignUpFieldsMissing, Err: models.ErrInvalidInput}
	}
	if password != confirm {
		return nil, &Error{Message: MsgPasswordMismatch, Err: models.ErrInvalidInput}
	}
	resp, err := checker.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := storeSession(ctx, sessions, resp, email); err != nil {
		return resp, err
	}
	return resp, nil
}

func storeSession(ctx context.Context, sessions *store.AuthStore, resp *models.AuthResponse, identifier string) error {
	user := resp.User
	if user == nil {
		user = &models.User{ID: identifier, Email: identifier}
	}
	token := resp.Token
	if err := sessions.SetAuthData(ctx, user, &token); err != nil {
		return fmt.Errorf("session not saved: %w", err)
	}
	return nil
}
