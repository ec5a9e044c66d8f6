// Package app initializes and orchestrates the main components of the
// code-critic application. It wires together the configuration, database,
// review pipeline, and HTTP server.
package app

import (
	"log/slog"

	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/db"
	"github.com/sevigo/code-critic/internal/server"
)

// App holds the main application components.
type App struct {
	cfg    *config.Config
	server *server.Server
	dbConn *db.DB
	logger *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(cfg *config.Config, dbConn *db.DB, srv *server.Server, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		server: srv,
		dbConn: dbConn,
		logger: logger,
	}
}

// Start runs the HTTP server and blocks until shutdown or error.
func (a *App) Start() error {
	a.logger.Info("starting code-critic",
		"server_port", a.cfg.ServerPort,
		"offline_mode", a.cfg.OfflineMode,
		"model", a.cfg.LLMModel,
	)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly. The HTTP server stops first so
// no new review requests arrive while the database connection closes.
func (a *App) Stop() error {
	a.logger.Info("shutting down code-critic services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.logger.Info("closing database connection")
	if err := a.dbConn.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}

	if serverErr != nil {
		return serverErr
	}

	a.logger.Info("code-critic stopped successfully")
	return nil
}
