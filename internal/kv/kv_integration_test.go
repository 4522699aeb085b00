package kv_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"storyboard-server/internal/database"
	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
	"storyboard-server/pkg/migration"
)

// BackendSuite runs the same slot contract against the redis and postgres backends.
type BackendSuite struct {
	suite.Suite
	ctx         context.Context
	logger      *zap.Logger
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
}

func (s *BackendSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	s.pgPool, err = pgxpool.New(s.ctx, dsn)
	require.NoError(s.T(), err)

	runner := migration.NewRunner(migration.Source{FS: database.MigrationsFS(), Path: database.MigrationsPath}, s.pgPool)
	require.NoError(s.T(), runner.Up(s.ctx), "Failed to run migrations")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())
}

func (s *BackendSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *BackendSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE kv_slots")
	require.NoError(s.T(), err)
}

func (s *BackendSuite) exerciseContract(store kv.Store) {
	t := s.T()

	_, err := store.Get(s.ctx, "STORY_LIST")
	require.ErrorIs(t, err, models.ErrKeyNotFound)

	require.NoError(t, store.Set(s.ctx, "STORY_LIST", `[{"title":"a"}]`))
	require.NoError(t, store.Set(s.ctx, "STORY_LIST", `[{"title":"b"}]`))
	v, err := store.Get(s.ctx, "STORY_LIST")
	require.NoError(t, err)
	s.Equal(`[{"title":"b"}]`, v)

	require.NoError(t, store.Set(s.ctx, "user", `{"id":"1"}`))
	require.NoError(t, store.Set(s.ctx, "token", "mock-token"))
	require.NoError(t, store.Delete(s.ctx, "user", "token"))
	_, err = store.Get(s.ctx, "user")
	s.ErrorIs(err, models.ErrKeyNotFound)
	_, err = store.Get(s.ctx, "token")
	s.ErrorIs(err, models.ErrKeyNotFound)
}

func (s *BackendSuite) TestRedisStore() {
	s.exerciseContract(kv.NewRedisStore(s.redisClient, s.logger))
}

func (s *BackendSuite) TestPostgresStore() {
	s.exerciseContract(kv.NewPostgresStore(s.pgPool, s.logger))
}

func (s *BackendSuite) TestPrefixedOverRedis() {
	store := kv.Prefixed(kv.NewRedisStore(s.redisClient, s.logger), "user:42:")
	s.exerciseContract(store)

	require.NoError(s.T(), store.Set(s.ctx, "IMAGE_LIST", "[]"))
	raw, err := s.redisClient.Get(s.ctx, "user:42:IMAGE_LIST").Result()
	require.NoError(s.T(), err)
	s.Equal("[]", raw)
}

func TestBackendSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not reachable: %v", err)
	}
	cli.Close()

	suite.Run(t, new(BackendSuite))
}
