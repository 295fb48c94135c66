package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("SHELF_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	configPath := os.Getenv("SHELF_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	config, err := shared.Resolve(configPath, ".env")
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	var store session.Store
	if os.Getenv("SHELF_EPHEMERAL") != "" {
		store = session.NewMemoryStore()
	} else if db, err := shared.OpenDatabase(config.Database); err == nil {
		defer db.Close()
		store = session.NewSQLiteStore(db)
	} else {
		logger.Warn("session database unavailable, the session will not persist", "error", err)
		store = session.NewMemoryStore()
	}

	sess := session.New(session.Options{Store: store, Logger: logger})
	client := services.NewAuthClient(sess.TokenSource(), config.API.Timeout(), nil)
	api := services.NewAPIService(config.API.BaseURL, client).WithRateLimit(config.API.RateLimit)
	library := services.NewLibraryService(api, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Library: library,
		Session: sess,
		Cache:   cache.New(library, sess, logger),
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "shelf",
		Usage:    "Track your reading from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrCancelled):
			logger.Info("cancelled")
			os.Exit(0)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
