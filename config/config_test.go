package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FENRIR_ADDRESS", "FENRIR_PORT", "FENRIR_WORKERS", "FENRIR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultAddress, cfg.Address)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultWorkers, cfg.Workers)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FENRIR_ADDRESS", "127.0.0.1")
	t.Setenv("FENRIR_PORT", "7777")
	t.Setenv("FENRIR_WORKERS", "4")
	t.Setenv("FENRIR_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("FENRIR_PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
