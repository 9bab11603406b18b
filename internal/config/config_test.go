package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 1440*time.Minute, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.SweepEnabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "testuser", cfg.Seed.Username)
	assert.Equal(t, "/metrics", cfg.Observability.MetricsPath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("AUTH_SWEEP_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.SweepEnabled)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Auth.TokenTTL = 0
	assert.Error(t, validateConfig(cfg))

	cfg.Auth.TokenTTL = time.Hour
	cfg.Seed.Password = ""
	assert.Error(t, validateConfig(cfg))
}
