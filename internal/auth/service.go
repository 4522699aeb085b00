// Package auth registers accounts and issues and verifies access tokens.
package auth

import (
	"context"
	"time"

	"storyboard-server/internal/models"
)

// Service defines account and token operations.
type Service interface {
	Register(ctx context.Context, email, password string) (*models.User, *models.TokenDetails, error)
	Login(ctx context.Context, identifier, password string) (*models.TokenDetails, *models.User, error)
	Logout(ctx context.Context, accessUUID string) error
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
}

// Config carries the secrets and lifetimes the service needs.
type Config struct {
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration
	// DemoLogin accepts the embedded demo pair and its fixed token.
	DemoLogin bool
}
