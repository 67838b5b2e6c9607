package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=pos port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MediaPath string // uploaded images are written below this directory
	MediaURL  string // and served under this URL prefix

	LogLevel             string
	LogFormat            string
	SlowRequestThreshold time.Duration

	// HTTP status answered by employee verification for an unknown
	// restaurant: 400 or 403.
	VerifyInvalidRestaurantStatus int

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Warnings lists defaults left in place that should be overridden in
	// production. They are logged once the logger exists.
	Warnings []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		MediaPath:   getEnv("MEDIA_PATH", "./media"),
		MediaURL:    getEnv("MEDIA_URL", "/media"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}

	cfg.AccessTokenTTL = getDuration("ACCESS_TOKEN_TTL", 720*time.Hour, &errs)
	cfg.RefreshTokenTTL = getDuration("REFRESH_TOKEN_TTL", 960*time.Hour, &errs)
	cfg.SlowRequestThreshold = getDuration("SLOW_REQUEST_THRESHOLD", 200*time.Millisecond, &errs)
	cfg.DBConnMaxLifetime = getDuration("DB_CONN_MAX_LIFETIME", time.Hour, &errs)
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 25, &errs)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 5, &errs)
	cfg.VerifyInvalidRestaurantStatus = getInt("VERIFY_INVALID_RESTAURANT_STATUS", http.StatusBadRequest, &errs)

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	} else if len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if s := cfg.VerifyInvalidRestaurantStatus; s != http.StatusBadRequest && s != http.StatusForbidden {
		errs = append(errs, fmt.Errorf("VERIFY_INVALID_RESTAURANT_STATUS must be 400 or 403, got %d", s))
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == defaultDSN {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}
