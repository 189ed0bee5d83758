package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, time.Minute, cfg.LeaderboardRefresh)
	assert.Equal(t, []string{"*"}, cfg.Origins())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nlog_level: debug\n"), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	// environment wins over the file
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("pool bounds", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("DB_MIN_CONNS", "20")

		_, err := load()
		assert.Error(t, err)
	})

	for _, interval := range []string{"0s", "-5s"} {
		t.Run("refresh interval "+interval, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			t.Setenv("LEADERBOARD_REFRESH_INTERVAL", interval)

			_, err := load()
			assert.ErrorContains(t, err, "LEADERBOARD_REFRESH_INTERVAL")
		})
	}

	t.Run("unknown log format", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := load()
		assert.ErrorContains(t, err, "LOG_FORMAT")
	})

	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("ENVIRONMENT", "production")

		_, err := load()
		assert.Error(t, err)
	})
}
