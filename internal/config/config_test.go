package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clipvault")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("BLOB_ROOT", "/var/lib/clipvault/blobs")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 200, cfg.MaxItemsPerOwner)
	assert.Equal(t, 50, cfg.DefaultPageSize)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_ITEMS_PER_OWNER", "25")
	t.Setenv("DEFAULT_PAGE_SIZE", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 25, cfg.MaxItemsPerOwner)
	assert.Equal(t, 10, cfg.DefaultPageSize)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOB_ROOT", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidNumbers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_ITEMS_PER_OWNER", "many")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("MAX_ITEMS_PER_OWNER", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}
