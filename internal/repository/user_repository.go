package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a PostgreSQL-backed UserRepository.
func NewPgUserRepository(db DBTX, logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func (r *pgUserRepository) CreateUser(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id::text, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", account.Email))
	err := r.db.QueryRow(ctx, query, account.Email, account.PasswordHash).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate user",
				zap.String("email", account.Email), zap.String("constraint", pgErr.ConstraintName))
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", account.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", account.ID), zap.String("email", account.Email))
	return nil
}

func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id::text AS id, email, password_hash, created_at FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *pgUserRepository) GetUserByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id::text AS id, email, password_hash, created_at FROM users WHERE id::text = $1`
	return r.getOne(ctx, query, id)
}

func (r *pgUserRepository) getOne(ctx context.Context, query, arg string) (*models.Account, error) {
	var account models.Account
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("arg", arg))
	err := pgxscan.Get(ctx, r.db, &account, query, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user from postgres", zap.Error(err), zap.String("arg", arg))
		return nil, fmt.Errorf("failed to get user from postgres: %w", err)
	}
	return &account, nil
}
