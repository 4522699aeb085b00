package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv_slots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore keeps slots in a single-file database. The client CLI uses it
// to keep the session between runs.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create slot directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite slots: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite slots: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite slot schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger.Named("SQLiteKV")}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrKeyNotFound
		}
		s.logger.Error("Failed to get slot from sqlite", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get slot %q from sqlite: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		s.logger.Error("Failed to upsert slot in sqlite", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upsert slot %q in sqlite: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sqlite delete: %w", err)
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_slots WHERE key = ?`, k); err != nil {
			s.logger.Error("Failed to delete slot from sqlite", zap.String("key", k), zap.Error(err))
			return fmt.Errorf("failed to delete slot %q from sqlite: %w", k, err)
		}
	}
	return tx.Commit()
}
