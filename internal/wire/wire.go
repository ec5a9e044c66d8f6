//go:build wireinject
// +build wireinject

package wire

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"github.com/sevigo/code-critic/internal/app"
	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/db"
	"github.com/sevigo/code-critic/internal/llm"
	"github.com/sevigo/code-critic/internal/logger"
	"github.com/sevigo/code-critic/internal/review"
	"github.com/sevigo/code-critic/internal/server"
	"github.com/sevigo/code-critic/internal/storage"
)

func InitializeApp() (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		config.LoadConfig,
		db.NewDatabase,
		storage.NewStore,
		llm.NewPromptManager,
		review.NewService,
		provideGateway,
		provideDBConfig,
		provideLoggerConfig,
		provideLogWriter,
		provideSlogLogger,
		provideSqlxDB,
	)
	return &app.App{}, nil, nil
}

func provideGateway(cfg *config.Config, log *slog.Logger) review.ModelGateway {
	return llm.NewClient(cfg, log)
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return cfg.Database
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter() io.Writer {
	return os.Stdout
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	return logger.NewLogger(loggerConfig, writer)
}

func provideSqlxDB(dbConn *db.DB) *sqlx.DB {
	return dbConn.DB
}
