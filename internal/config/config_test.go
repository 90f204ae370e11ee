package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3080", cfg.ListenAddr)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 365*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 5, cfg.DBMaxConnections)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET":           "s3cret",
		"LISTEN_ADDR":          "0.0.0.0:8080",
		"SESSION_TTL":          "24h",
		"STORAGE_TYPE":         "postgres",
		"DATABASE_URL":         "postgres://u:p@db:5432/tycoon",
		"DB_MAX_CONNECTIONS":   "20",
		"DB_AUTO_MIGRATE":      "false",
		"LOG_LEVEL":            "debug",
		"METRICS_ENABLED":      "false",
		"CORS_ALLOWED_ORIGINS": "https://game.example,https://beta.game.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoragePostgres, cfg.StorageType)
	assert.Equal(t, 20, cfg.DBMaxConnections)
	assert.False(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://game.example", "https://beta.game.example"}, cfg.CORSAllowedOrigins)
}

func TestPostgresRequiresDatabaseURL(t *testing.T) {
	_, err := LoadFrom(map[string]string{"JWT_SECRET": "s3cret", "STORAGE_TYPE": "postgres"})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestInvalidStorageType(t *testing.T) {
	_, err := LoadFrom(map[string]string{"JWT_SECRET": "s3cret", "STORAGE_TYPE": "sqlite"})
	assert.ErrorContains(t, err, "STORAGE_TYPE")
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}
