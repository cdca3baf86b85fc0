package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Auth.Nonce.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.Token.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QUESTLINE_SERVER_ADDR", ":8080")
	t.Setenv("QUESTLINE_AUTH_NONCE_TTL", "45s")
	t.Setenv("QUESTLINE_AUTH_TOKEN_TTL", "1h")
	t.Setenv("QUESTLINE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 45*time.Second, cfg.Auth.Nonce.TTL)
	assert.Equal(t, time.Hour, cfg.Auth.Token.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questline.yaml")
	content := []byte(`
server:
  addr: ":7000"
auth:
  nonce:
    ttl: 90s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Auth.Nonce.TTL)
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600))

	t.Setenv("QUESTLINE_SERVER_ADDR", ":6000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty redis url", func(c *Config) { c.Redis.URL = "" }},
		{"empty postgres url", func(c *Config) { c.Postgres.URL = "" }},
		{"zero nonce ttl", func(c *Config) { c.Auth.Nonce.TTL = 0 }},
		{"negative token ttl", func(c *Config) { c.Auth.Token.TTL = -time.Second }},
		{"bad log level", func(c *Config) { c.Log.Level = "shouty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
