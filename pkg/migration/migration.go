// Package migration applies the embedded SQL schema with golang-migrate.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// Source points at a directory of *.up.sql / *.down.sql files inside FS.
type Source struct {
	FS   fs.FS
	Path string
}

// Runner applies migrations from Source to the database behind pool.
type Runner struct {
	source Source
	pool   *pgxpool.Pool
}

// NewRunner creates a Runner.
func NewRunner(source Source, pool *pgxpool.Pool) *Runner {
	return &Runner{source: source, pool: pool}
}

// Up applies all pending migrations. ErrNoChange is not an error.
func (r *Runner) Up(ctx context.Context) error {
	m, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if version, dirty, verr := m.Version(); verr == nil {
			log.Error().Uint("version", version).Bool("dirty", dirty).Msg("migration failed")
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Str("path", r.source.Path).Msg("database migrations applied")
	return nil
}

// Down rolls back every migration.
func (r *Runner) Down(ctx context.Context) error {
	m, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	log.Info().Msg("database migrations rolled back")
	return nil
}

// Version returns the applied schema version; 0 when nothing is applied.
func (r *Runner) Version(ctx context.Context) (uint, bool, error) {
	m, err := r.open(ctx)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func (r *Runner) open(ctx context.Context) (*migrate.Migrate, error) {
	if err := r.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database not reachable for migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(r.pool)
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	src, err := iofs.New(r.source.FS, r.source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.LockTimeout = 30 * time.Second
	return m, nil
}
