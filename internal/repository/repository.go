// Package repository persists accounts and issued access tokens.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storyboard-server/internal/models"
)

// DBTX is the subset of pgxpool.Pool / pgx.Tx the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	// CreateUser inserts account and fills its ID and CreatedAt.
	// Returns models.ErrUserAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, account *models.Account) error

	// GetUserByEmail returns models.ErrUserNotFound if nothing matches.
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetUserByID returns models.ErrUserNotFound if nothing matches.
	GetUserByID(ctx context.Context, id string) (*models.Account, error)
}

// TokenRepository tracks live access tokens by their UUID.
type TokenRepository interface {
	// SetToken records td.AccessUUID for userID until td.AtExpires.
	SetToken(ctx context.Context, userID string, td *models.TokenDetails) error

	// DeleteToken revokes accessUUID and reports how many entries were removed.
	DeleteToken(ctx context.Context, accessUUID string) (int64, error)

	// GetUserIDByAccessUUID returns models.ErrTokenNotFound for unknown or
	// expired tokens.
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (string, error)
}

func accessKey(accessUUID string) string {
	return "access_uuid:" + accessUUID
}
