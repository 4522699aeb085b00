package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"storyboard-server/internal/auth"
	"storyboard-server/internal/blob"
	"storyboard-server/internal/config"
	"storyboard-server/internal/database"
	"storyboard-server/internal/handler"
	"storyboard-server/internal/kv"
	"storyboard-server/internal/library"
	"storyboard-server/internal/logger"
	"storyboard-server/internal/messaging"
	"storyboard-server/internal/repository"
	"storyboard-server/pkg/migration"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	log.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("kvBackend", cfg.KVBackend),
		zap.String("blobBackend", cfg.BlobBackend),
		zap.Bool("generation", cfg.RabbitMQURL != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- External Connections ---
	var pgPool *pgxpool.Pool
	if dsn := cfg.PostgresDSN(); dsn != "" {
		pgPool, err = database.ConnectPostgres(ctx, dsn, int32(cfg.DBMaxConns), cfg.DBIdleTimeout, database.DefaultRetryPolicy, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pgPool.Close()

		runner := migration.NewRunner(migration.Source{FS: database.MigrationsFS(), Path: database.MigrationsPath}, pgPool)
		if err := runner.Up(ctx); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.ConnectRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, database.DefaultRetryPolicy, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	slots, mongoClient, err := setupSlots(ctx, cfg, pgPool, redisClient, log)
	if err != nil {
		log.Fatal("Failed to set up slot storage", zap.Error(err))
	}
	if mongoClient != nil {
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()
	}

	blobs, err := setupBlobs(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to set up blob storage", zap.Error(err))
	}

	// --- Dependency Injection ---
	var userRepo repository.UserRepository
	if pgPool != nil {
		userRepo = repository.NewPgUserRepository(pgPool, log)
	} else {
		userRepo = repository.NewKVUserRepository(slots, log)
	}
	var tokenRepo repository.TokenRepository
	if redisClient != nil {
		tokenRepo = repository.NewRedisTokenRepository(redisClient, log)
	} else {
		tokenRepo = repository.NewKVTokenRepository(slots, log)
	}
	authSvc := auth.NewService(userRepo, tokenRepo, auth.Config{
		JWTSecret:      cfg.JWTSecret,
		PasswordPepper: cfg.PasswordPepper,
		AccessTokenTTL: cfg.AccessTokenTTL,
		DemoLogin:      cfg.DemoLoginEnabled,
	}, log)
	libs := library.NewManager(slots, log)

	var (
		mqConn    *amqp091.Connection
		publisher *messaging.ScenePublisher
		consumer  *messaging.ResultConsumer
	)
	opts := handler.Options{MaxUploadBytes: cfg.MaxUploadBytes}
	if cfg.RabbitMQURL != "" {
		mqConn, err = database.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, database.DefaultRetryPolicy, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		publisher, err = messaging.NewScenePublisher(mqConn)
		if err != nil {
			log.Fatal("Failed to create scene publisher", zap.Error(err))
		}
		defer publisher.Close()
		opts.Publisher = publisher

		consumer, err = messaging.NewResultConsumer(mqConn, libs, log)
		if err != nil {
			log.Fatal("Failed to create scene result consumer", zap.Error(err))
		}
		go func() {
			if err := consumer.StartConsuming(); err != nil {
				log.Error("Scene result consumer stopped with error", zap.Error(err))
			}
		}()
	}

	h := handler.NewHandler(authSvc, libs, blobs, opts, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	routerOpts := handler.RouterOptions{
		AllowedOrigins: cfg.GetAllowedOrigins(),
		AuthLimiter:    handler.NewAuthRateLimiter(redisClient, cfg.AuthRateLimit, cfg.AuthRateLimitWindow),
		Metrics:        true,
	}
	if local, ok := blobs.(*blob.LocalStore); ok {
		routerOpts.UploadDir = local.Dir()
	}
	router := handler.NewRouter(h, routerOpts, log)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutting down server...")

	if consumer != nil {
		_ = consumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}

// setupSlots picks the slot backend named by KV_BACKEND.
func setupSlots(ctx context.Context, cfg *config.Config, pgPool *pgxpool.Pool, redisClient *redis.Client, log *zap.Logger) (kv.Store, *mongo.Client, error) {
	switch cfg.KVBackend {
	case config.BackendRedis:
		return kv.NewRedisStore(redisClient, log), nil, nil
	case config.BackendPostgres:
		return kv.NewPostgresStore(pgPool, log), nil, nil
	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, database.MongoOptions{
			URI:      cfg.MongoURI,
			User:     cfg.MongoUser,
			Password: cfg.MongoPassword,
		}, database.DefaultRetryPolicy, log)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return kv.NewMongoStore(coll, log), client, nil
	default:
		log.Warn("Using in-memory slot storage; data is lost on restart")
		return kv.NewMemoryStore(), nil, nil
	}
}

func setupBlobs(ctx context.Context, cfg *config.Config, log *zap.Logger) (blob.Store, error) {
	if cfg.BlobBackend == config.BlobMinio {
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, log)
	}
	return blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads", log)
}
