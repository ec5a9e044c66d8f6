// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"fmt"
	"io"
	"os"

	"github.com/sevigo/code-critic/internal/app"
	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/db"
	"github.com/sevigo/code-critic/internal/llm"
	"github.com/sevigo/code-critic/internal/logger"
	"github.com/sevigo/code-critic/internal/review"
	"github.com/sevigo/code-critic/internal/server"
	"github.com/sevigo/code-critic/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp() (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := cfg.Logging
	var logWriter io.Writer
	switch cfg.Logging.Output {
	case "stderr":
		logWriter = os.Stderr
	case "file":
		f, _ := os.OpenFile("code-critic.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		logWriter = f
	default:
		logWriter = os.Stdout
	}
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	// Database
	dbConn, dbCleanup, err := db.NewDatabase(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// Prompt Manager
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	// Model Gateway
	gateway := llm.NewClient(cfg, slogLogger)

	// Review Service
	reviewService := review.NewService(cfg, promptMgr, gateway, store, slogLogger)

	// Server
	srv := server.NewServer(cfg, reviewService, slogLogger)

	// App
	application := app.NewApp(cfg, dbConn, srv, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
