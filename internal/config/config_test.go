package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20.0, cfg.Server.RateLimit)
	assert.InDelta(t, 0.25, cfg.Scoring.FitWeight, 0.001)
	assert.Equal(t, 70, cfg.Scoring.HotThreshold)
	assert.Equal(t, 40, cfg.Scoring.WarmThreshold)
	assert.Equal(t, 8, cfg.Scoring.Workers)
}

func TestLoadFromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
store:
  driver: sqlite
  database_url: ./local.db
server:
  port: 9090
scoring:
  hot_threshold: 80
  keywords:
    own_product: acme-search
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "./local.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 80, cfg.Scoring.HotThreshold)
	// File values overlay defaults, untouched keys keep them.
	assert.Equal(t, 40, cfg.Scoring.WarmThreshold)
	assert.Equal(t, "acme-search", cfg.Scoring.Keywords.OwnProduct)
}

func TestLoadBadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte("store: [not: valid"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARTNERFORGE_STORE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
