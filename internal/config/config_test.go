package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, "counter", cfg.Identifier.Strategy)
	assert.False(t, cfg.Auth.Required)
	assert.False(t, cfg.Booking.SlotLock.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "admin@hospital.com", cfg.Seed.AdminEmail)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 8081
database:
  host: db.internal
identifier:
  strategy: count
app:
  timezone: Asia/Kolkata
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("HOSPITAL_DATABASE_HOST", "override.internal")
	t.Setenv("HOSPITAL_BOOKING_SLOT_LOCK_ENABLED", "true")
	t.Setenv("HOSPITAL_REDIS_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "count", cfg.Identifier.Strategy)
	assert.True(t, cfg.Booking.SlotLock.Enabled)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Location().String())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("HOSPITAL_IDENTIFIER_STRATEGY", "random")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_SlotLockNeedsRedis(t *testing.T) {
	t.Setenv("HOSPITAL_BOOKING_SLOT_LOCK_ENABLED", "true")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "requires redis.enabled")
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	t.Setenv("HOSPITAL_DATABASE_DRIVER", "mongodb")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "invalid database driver")
}

func TestConversions(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	pg := cfg.Database.ToPostgresConfig()
	assert.Contains(t, pg.DSN(), "dbname=hospital")

	broker := cfg.Redis.ToBrokerConfig()
	assert.Equal(t, cfg.Redis.URL, broker.URL)
}
