package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.StateDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://orgforge.example.com\nlog_level: debug\n"), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://orgforge.example.com", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example.com\n"), 0o600))

	t.Setenv("ORGFORGE_API_URL", "https://env.example.com")
	t.Setenv("ORGFORGE_LOG_LEVEL", "warn")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unclosed\n"), 0o600))

	_, err := load(path)
	assert.Error(t, err)
}
