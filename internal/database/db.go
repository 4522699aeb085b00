package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// RetryPolicy controls how long connection setup keeps trying.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy waits for containers started alongside the service.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 50, Delay: 3 * time.Second}

// ConnectPostgres creates a pgx pool and pings it, retrying per policy.
func ConnectPostgres(ctx context.Context, dsn string, maxConns int32, idle time.Duration, policy RetryPolicy, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if idle > 0 {
		poolConfig.MaxConnIdleTime = idle
	}

	logger.Info("Attempting to connect to PostgreSQL", zap.Int("max_retries", policy.MaxRetries), zap.Duration("retry_delay", policy.Delay))

	var lastErr error
	for i := 0; i < policy.MaxRetries; i++ {
		attempt := i + 1
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()
		if err != nil {
			lastErr = fmt.Errorf("unable to create postgres connection pool (attempt %d/%d): %w", attempt, policy.MaxRetries, err)
			logger.Warn("Postgres connection pool creation failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
			if !sleep(ctx, policy.Delay) {
				return nil, ctx.Err()
			}
			continue
		}

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err = pool.Ping(pingCtx)
		pingCancel()
		if err == nil {
			logger.Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		pool.Close()
		lastErr = fmt.Errorf("unable to ping postgres database (attempt %d/%d): %w", attempt, policy.MaxRetries, err)
		logger.Warn("Postgres ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, policy.Delay) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", policy.MaxRetries, lastErr)
}

// ConnectRedis creates a redis client and pings it, retrying per policy.
func ConnectRedis(ctx context.Context, opts *redis.Options, policy RetryPolicy, logger *zap.Logger) (*redis.Client, error) {
	logger.Info("Attempting to connect and ping Redis", zap.String("address", opts.Addr), zap.Int("db", opts.DB))

	var lastErr error
	for i := 0; i < policy.MaxRetries; i++ {
		attempt := i + 1
		client := redis.NewClient(opts)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()
		if err == nil {
			logger.Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, policy.MaxRetries, err)
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, policy.Delay) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", policy.MaxRetries, lastErr)
}

// ConnectRabbitMQ dials url, retrying per policy, and logs unexpected
// connection loss.
func ConnectRabbitMQ(ctx context.Context, rawURL string, policy RetryPolicy, logger *zap.Logger) (*amqp091.Connection, error) {
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", redactURL(rawURL)),
		zap.Int("max_retries", policy.MaxRetries),
		zap.Duration("retry_delay", policy.Delay),
	)

	var lastErr error
	for i := 0; i < policy.MaxRetries; i++ {
		attempt := i + 1
		conn, err := amqp091.Dial(rawURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				if err := <-conn.NotifyClose(make(chan *amqp091.Error, 1)); err != nil {
					logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
				}
			}()
			return conn, nil
		}
		lastErr = err
		logger.Warn("RabbitMQ connection failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, policy.Delay) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", policy.MaxRetries, lastErr)
}

// MongoOptions selects the deployment and credentials.
type MongoOptions struct {
	URI      string
	User     string
	Password string
}

// ConnectMongo connects and pings the primary, retrying per policy.
func ConnectMongo(ctx context.Context, opts MongoOptions, policy RetryPolicy, logger *zap.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.User != "" {
		clientOpts.SetAuth(options.Credential{Username: opts.User, Password: opts.Password})
	}
	logger.Info("Attempting to connect to MongoDB", zap.String("uri", redactURL(opts.URI)))

	var lastErr error
	for i := 0; i < policy.MaxRetries; i++ {
		attempt := i + 1
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := mongo.Connect(connectCtx, clientOpts)
		if err == nil {
			err = client.Ping(connectCtx, readpref.Primary())
			if err != nil {
				_ = client.Disconnect(context.Background())
			}
		}
		cancel()
		if err == nil {
			logger.Info("Successfully connected and pinged MongoDB", zap.Int("attempt", attempt))
			return client, nil
		}
		lastErr = err
		logger.Warn("MongoDB connection failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, policy.Delay) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", policy.MaxRetries, lastErr)
}

// redactURL hides the password of a connection URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
