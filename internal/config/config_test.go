package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 720*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 960*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowRequestThreshold)
	assert.Equal(t, 400, cfg.VerifyInvalidRestaurantStatus)
	assert.Equal(t, "./media", cfg.MediaPath)
	assert.Len(t, cfg.Warnings, 2)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DATABASE_DSN", "host=db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pos.example")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("VERIFY_INVALID_RESTAURANT_STATUS", "403")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 403, cfg.VerifyInvalidRestaurantStatus)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Empty(t, cfg.Warnings)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("ACCESS_TOKEN_TTL", "forever")
	t.Setenv("VERIFY_INVALID_RESTAURANT_STATUS", "404")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL")
	assert.Contains(t, err.Error(), "VERIFY_INVALID_RESTAURANT_STATUS")
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET is not set")
}
