package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ClientConfig configures the storyboard command line client.
type ClientConfig struct {
	RemoteBaseURL string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:3000"`
	RemoteTimeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"15s"`
	// SessionPath is the sqlite file holding the user and token slots.
	// Defaults to ~/.storyboard/session.db.
	SessionPath string `envconfig:"SESSION_PATH"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
	// Demo checks credentials against the embedded demo account instead of
	// the server.
	Demo bool `envconfig:"DEMO_LOGIN" default:"false"`
}

// LoadClientConfig reads an optional .env file and the environment.
// No secrets are needed on the client side.
func LoadClientConfig(envFilePath string) (*ClientConfig, error) {
	if envFilePath != "" {
		// a missing file is fine
		_ = godotenv.Load(envFilePath)
	}
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	if cfg.SessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve session path: %w", err)
		}
		cfg.SessionPath = filepath.Join(home, ".storyboard", "session.db")
	}
	return &cfg, nil
}
