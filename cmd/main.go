package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/catx/internal/services"
	"github.com/desertthunder/catx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	apiService := services.NewAPIService(config.API.BaseURL, &http.Client{Timeout: config.API.Timeout()})
	apiService.SetLogger(logger)

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    apiService,
		DB:     db,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "catx",
		Usage:    "Search the music catalog and manage your session",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		db.Close()
		logger.Fatalf("application error: %v", err)
	}
}
