package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "Rideway", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.App.IsProduction())

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "rideway.db", cfg.Database.DSN)
	assert.True(t, cfg.Database.AutoMigrate)

	assert.Equal(t, 6, cfg.Auth.MinLength)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)

	assert.Equal(t, 15*time.Minute, cfg.Verification.Expiry)
	assert.Equal(t, time.Minute, cfg.Verification.ResendInterval)
	assert.Equal(t, 5, cfg.Verification.MaxSendsPerWindow)
	assert.Equal(t, time.Hour, cfg.Verification.SendWindow)
	assert.False(t, cfg.Verification.AllowDevBypass)

	assert.Equal(t, time.Hour, cfg.PasswordReset.Expiry)
	assert.Equal(t, 32, cfg.PasswordReset.TokenLength)
	assert.Equal(t, 5, cfg.PasswordReset.MaxRequestsPerHour)

	assert.Equal(t, "smtp", cfg.Mail.Transport)
	assert.Equal(t, CountAll, cfg.RateLimit.CountMode)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RIDEWAY_APP_ENV", "production")
	t.Setenv("RIDEWAY_VERIFICATION_EXPIRY", "30m")
	t.Setenv("RIDEWAY_CORS_ALLOWED_ORIGINS", "https://rideway.example,https://www.rideway.example")

	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.Verification.Expiry)
	assert.Equal(t, []string{"https://rideway.example", "https://www.rideway.example"}, cfg.CORS.AllowedOrigins)
}
