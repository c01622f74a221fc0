package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warehouse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSetDefaults_ProducesValidConfig(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Locking.Backend)
	assert.Equal(t, "MAIN", cfg.Inventory.DefaultLocation)
	assert.Equal(t, 20, cfg.Inventory.RecentMovements)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  path: /tmp/wh-test.db
server:
  address: 0.0.0.0:9000
  rate_limit:
    requests_per_second: 5
    burst: 10
locking:
  backend: redis
  redis_address: localhost:6379
  ttl: 5s
inventory:
  recent_movements: 50
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/wh-test.db", cfg.Database.Path)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, "redis", cfg.Locking.Backend)
	assert.Equal(t, 5*time.Second, cfg.Locking.TTL)
	assert.Equal(t, 50, cfg.Inventory.RecentMovements)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
logging:
  level: info
`)
	t.Setenv("WH_LOGGING_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgresql://wh:secret@db:5432/warehouse")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgresql://wh:secret@db:5432/warehouse", cfg.Database.URL)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
locking:
  backend: redis
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RedisAddress")
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: chatty
`)

	cfg := LoadConfigOrDefault(path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	h := NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "nested", "config.json"))

	empty, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, empty.DefaultActor)

	require.NoError(t, h.Update(func(c *UserConfig) {
		c.DefaultActor = "alice"
		c.DefaultLocation = "YARD"
	}))

	loaded, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.DefaultActor)
	assert.Equal(t, "YARD", loaded.DefaultLocation)
}
