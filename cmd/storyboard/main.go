package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"storyboard-server/internal/cli"
	"storyboard-server/internal/config"
	"storyboard-server/internal/credentials"
	"storyboard-server/internal/kv"
	"storyboard-server/internal/logger"
	"storyboard-server/internal/remote"
	"storyboard-server/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClientConfig(".env")
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	slots, err := kv.OpenSQLiteStore(cfg.SessionPath, log)
	if err != nil {
		return err
	}
	defer slots.Close()

	backend, err := remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteTimeout, log)
	if err != nil {
		return err
	}
	var checker credentials.Checker = credentials.NewRemoteChecker(backend, log)
	if cfg.Demo {
		checker = credentials.LiteralChecker{}
	}
	log.Debug("Client configured", zap.String("server", cfg.RemoteBaseURL), zap.Bool("demo", cfg.Demo))

	app := &cli.App{
		Checker:  checker,
		Sessions: store.NewAuthStore(slots, log),
		Images: func(token string) remote.Store {
			return backend.WithToken(token)
		},
		Out: os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.NewRootCommand(app).ExecuteContext(ctx)
}
