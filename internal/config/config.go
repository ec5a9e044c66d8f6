// Package config loads and validates process-wide configuration. All values
// are read once at startup and treated as read-only afterwards.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/code-critic/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort string
	Logging    logger.Config

	// Model endpoint settings. BaseURL and APIKey are required unless
	// OfflineMode is set, in which case no remote call is ever made.
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	OfflineMode bool

	// Pipeline limits.
	MaxCodeLength     int
	LLMMaxAttempts    int
	LLMRequestTimeout time.Duration

	Database *DBConfig
}

// DBConfig holds the postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("OFFLINE_MODE", false)
	viper.SetDefault("MAX_CODE_LENGTH", 10000)
	viper.SetDefault("LLM_MAX_ATTEMPTS", 3)
	viper.SetDefault("LLM_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "code_critic")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	// A missing .env file is fine; environment variables still apply.
	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("failed to read config file", "error", err)
		}
	}

	offline := viper.GetBool("OFFLINE_MODE")
	if !offline {
		if viper.GetString("LLM_BASE_URL") == "" {
			return nil, fmt.Errorf("LLM_BASE_URL must be set unless OFFLINE_MODE is enabled")
		}
		if viper.GetString("LLM_API_KEY") == "" {
			return nil, fmt.Errorf("LLM_API_KEY must be set unless OFFLINE_MODE is enabled")
		}
	}

	maxCodeLength := viper.GetInt("MAX_CODE_LENGTH")
	if maxCodeLength <= 0 {
		return nil, fmt.Errorf("MAX_CODE_LENGTH must be positive, got %d", maxCodeLength)
	}

	maxAttempts := viper.GetInt("LLM_MAX_ATTEMPTS")
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("LLM_MAX_ATTEMPTS must be positive, got %d", maxAttempts)
	}

	requestTimeout := viper.GetDuration("LLM_REQUEST_TIMEOUT")
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("LLM_REQUEST_TIMEOUT must be positive, got %s", requestTimeout)
	}

	return &Config{
		ServerPort: viper.GetString("SERVER_PORT"),
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		LLMBaseURL:        viper.GetString("LLM_BASE_URL"),
		LLMAPIKey:         viper.GetString("LLM_API_KEY"),
		LLMModel:          viper.GetString("LLM_MODEL"),
		OfflineMode:       offline,
		MaxCodeLength:     maxCodeLength,
		LLMMaxAttempts:    maxAttempts,
		LLMRequestTimeout: requestTimeout,
		Database: &DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
	}, nil
}
