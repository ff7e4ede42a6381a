package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 5, cfg.Bot.PageSize)
	assert.Equal(t, 150, cfg.Bot.PreviewRunes)
	assert.Zero(t, cfg.RateLimit.EventsPerSecond, "rate limiting off by default")
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_addr: ":9999"
storage:
  backend: sqlite
  path: /tmp/notes.db
bot:
  page_size: 3
ratelimit:
  events_per_second: 2.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/notes.db", cfg.Storage.Path)
	assert.Equal(t, 3, cfg.Bot.PageSize)
	assert.Equal(t, 150, cfg.Bot.PreviewRunes, "unset fields keep defaults")
	assert.Equal(t, 2.5, cfg.RateLimit.EventsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst, "burst defaulted once limiting is on")
	assert.Equal(t, time.Hour, cfg.RateLimit.CleanupInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_addr: ":9999"
`)
	t.Setenv("SERVER_LISTEN_ADDR", ":7777")
	t.Setenv("BOT_PAGE_SIZE", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.ListenAddr)
	assert.Equal(t, 7, cfg.Bot.PageSize)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: "unknown storage backend",
		},
		{
			name:    "file backend without path",
			mutate:  func(c *Config) { c.Storage.Backend = BackendFile; c.Storage.Path = "" },
			wantErr: "storage.path is required",
		},
		{
			name:    "sqlite backend without path",
			mutate:  func(c *Config) { c.Storage.Backend = BackendSQLite; c.Storage.Path = "" },
			wantErr: "storage.path is required",
		},
		{
			name:    "negative page size",
			mutate:  func(c *Config) { c.Bot.PageSize = -1 },
			wantErr: "bot.page_size",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.RateLimit.EventsPerSecond = -1 },
			wantErr: "events_per_second",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
