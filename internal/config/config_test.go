package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "mock", cfg.Settlement.Mode)
	assert.Equal(t, 2*time.Second, cfg.Settlement.Delay)
	assert.Equal(t, "token-events", cfg.Kafka.Topic("tokenEvents"))
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("server:\n  port: \"9090\"\nstorage:\n  driver: postgres\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("ECOCHAIN_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "eco", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=eco sslmode=disable", d.DSN())
}
