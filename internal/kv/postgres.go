package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// DBTX is the subset of pgxpool.Pool / pgx.Tx used by the postgres backend.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time check to ensure pgStore implements Store
var _ Store = (*pgStore)(nil)

type pgStore struct {
	db     DBTX
	logger *zap.Logger
}

// NewPostgresStore creates a Store over the kv_slots table.
func NewPostgresStore(db DBTX, logger *zap.Logger) Store {
	return &pgStore{
		db:     db,
		logger: logger.Named("PgKV"),
	}
}

func (r *pgStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM kv_slots WHERE key = $1`
	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrKeyNotFound
		}
		r.logger.Error("Failed to get slot from postgres", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get slot %q from postgres: %w", key, err)
	}
	return value, nil
}

func (r *pgStore) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("key", key))
	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		r.logger.Error("Failed to upsert slot in postgres", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upsert slot %q in postgres: %w", key, err)
	}
	return nil
}

func (r *pgStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM kv_slots WHERE key = ANY($1)`
	if _, err := r.db.Exec(ctx, query, keys); err != nil {
		r.logger.Error("Failed to delete slots from postgres", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("failed to delete slots from postgres: %w", err)
	}
	return nil
}
