package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("CARDFILE_CONFIG")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cardfile")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, time.Hour, cfg.AnalysisInterval)
	require.Equal(t, "10-S", cfg.RateLimit)
	require.Equal(t, 1, cfg.RabbitMQPrefetch)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cardfile")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("SERVER_DEBUG_MODE", "true")
	t.Setenv("RABBITMQ_PREFETCH", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.ServerPort)
	require.Equal(t, 45*time.Second, cfg.AITimeout)
	require.True(t, cfg.ServerDebugMode)
	require.Equal(t, 5, cfg.RabbitMQPrefetch)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_url: postgres://filehost/cardfile\nserver_port: \"7070\"\nrate_limit: 100-M\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	os.Unsetenv("DATABASE_URL")
	t.Setenv("CARDFILE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "postgres://filehost/cardfile", cfg.DatabaseURL)
	require.Equal(t, "7070", cfg.ServerPort)
	require.Equal(t, "100-M", cfg.RateLimit)
}

func TestEnvOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_url: postgres://filehost/cardfile\nserver_port: \"7070\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CARDFILE_CONFIG", path)
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9999", cfg.ServerPort, "env should win over file")
}
