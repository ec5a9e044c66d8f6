package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("OFFLINE_MODE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.True(t, cfg.OfflineMode)
	assert.Equal(t, 10000, cfg.MaxCodeLength)
	assert.Equal(t, 3, cfg.LLMMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "code_critic", cfg.Database.Database)
}

func TestLoadConfig_RequiresModelCredentials(t *testing.T) {
	viper.Reset()
	t.Setenv("OFFLINE_MODE", "false")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LLM_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_BASE_URL")
}

func TestLoadConfig_RequiresAPIKey(t *testing.T) {
	viper.Reset()
	t.Setenv("OFFLINE_MODE", "false")
	t.Setenv("LLM_BASE_URL", "https://api.example.com/v1")
	t.Setenv("LLM_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestLoadConfig_OfflineModeSkipsCredentialCheck(t *testing.T) {
	viper.Reset()
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.OfflineMode)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_CODE_LENGTH", "500")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")
	t.Setenv("LLM_REQUEST_TIMEOUT", "10s")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 500, cfg.MaxCodeLength)
	assert.Equal(t, 5, cfg.LLMMaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
}

func TestLoadConfig_RejectsBadLimits(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero max code length", "MAX_CODE_LENGTH", "0"},
		{"negative max code length", "MAX_CODE_LENGTH", "-1"},
		{"zero attempts", "LLM_MAX_ATTEMPTS", "0"},
		{"zero timeout", "LLM_REQUEST_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("OFFLINE_MODE", "true")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
