package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 3600*time.Second, cfg.Cache.ResponseTTL)
	assert.Equal(t, 5, cfg.Cache.SummarizeThreshold)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("APP_PORT", "9001")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("CACHE_SUMMARIZE_THRESHOLD", "3")
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.App.Port)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, 3, cfg.Cache.SummarizeThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CorsAllowedOrigins)
}

// Explicit viper values outrank the environment, so tooling that calls
// viper.Set before LoadConfig can force settings.
func TestLoadConfig_ViperValuesTakePrecedence(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("APP_PORT", "9001")
	viper.Set("APP_PORT", "7777")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.App.Port)
}

func TestLoadConfig_RejectsMissingProviderKey(t *testing.T) {
	resetViper(t)
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
