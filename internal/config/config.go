package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// KV backends selectable with KV_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Blob backends selectable with BLOB_BACKEND.
const (
	BlobLocal = "local"
	BlobMinio = "minio"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	ServerPort string `envconfig:"SERVER_PORT" default:"3000"`

	// Storage
	KVBackend string `envconfig:"KV_BACKEND" default:"memory"`

	// Database (users and kv_slots)
	DBHost        string        `envconfig:"DB_HOST"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"storyboard"`
	DBName        string        `envconfig:"DB_NAME" default:"storyboard"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	// Secret field without envconfig tag
	DBPassword string

	// Redis (tokens, kv slots, rate limiting)
	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Secret field without envconfig tag
	RedisPassword string

	// MongoDB (alternative kv backend)
	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"storyboard"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"kv_slots"`
	MongoUser       string `envconfig:"MONGO_USER"`
	// Secret field without envconfig tag
	MongoPassword string

	// Uploaded drawings
	BlobBackend    string `envconfig:"BLOB_BACKEND" default:"local"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"drawings"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioPublicURL string `envconfig:"MINIO_PUBLIC_URL"`
	// Secret field without envconfig tag
	MinioSecretKey string
	// Base URL that local drawings are served under (<base>/uploads/<file>)
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	// RabbitMQ (scene image generation); empty disables generation
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	// JWT Settings - secret fields without envconfig tags
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"168h"`

	// Demo login with the embedded literal credentials
	DemoLoginEnabled bool `envconfig:"DEMO_LOGIN_ENABLED" default:"true"`

	// Rate limiting on /auth
	AuthRateLimit       uint          `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	AuthRateLimitWindow time.Duration `envconfig:"AUTH_RATE_LIMIT_WINDOW" default:"1m"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8081"`

	// Directory holding secret files
	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`
}

// GetAllowedOrigins splits CORSAllowedOrigins into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// PostgresDSN builds the connection string; empty when DB_HOST is unset.
func (c *Config) PostgresDSN() string {
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Validate checks cross-field requirements envconfig cannot express.
func (c *Config) Validate() error {
	switch c.KVBackend {
	case BackendMemory, BackendMongo:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("KV_BACKEND=redis requires REDIS_ADDR")
		}
	case BackendPostgres:
		if c.DBHost == "" {
			return fmt.Errorf("KV_BACKEND=postgres requires DB_HOST")
		}
	default:
		return fmt.Errorf("unknown KV_BACKEND %q", c.KVBackend)
	}
	switch c.BlobBackend {
	case BlobLocal, BlobMinio:
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, environment
// variables and secret files.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Required secrets
	var loadErr error
	cfg.JWTSecret, loadErr = ReadSecret(cfg.SecretsDir, "jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.PasswordPepper, loadErr = ReadSecret(cfg.SecretsDir, "password_pepper")
	if loadErr != nil {
		return nil, loadErr
	}

	// Optional secrets
	cfg.DBPassword = optionalSecret(cfg.SecretsDir, "db_password")
	cfg.RedisPassword = optionalSecret(cfg.SecretsDir, "redis_password")
	cfg.MinioSecretKey = optionalSecret(cfg.SecretsDir, "minio_secret_key")
	cfg.MongoPassword = optionalSecret(cfg.SecretsDir, "mongo_password")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func optionalSecret(dir, name string) string {
	v, err := ReadSecret(dir, name)
	if err != nil {
		log.Printf("Optional secret '%s' not found or failed to read: %v", name, err)
		return ""
	}
	return v
}
