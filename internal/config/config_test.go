package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "downloads", cfg.Downloads.Path)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, DefaultMirrors, cfg.Search.Mirrors)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 300*time.Second, cfg.CacheTTL())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeConfig(t, `
[search]
limit = 25
mirrors = ["mirror.example"]

[cache]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, []string{"mirror.example"}, cfg.Search.Mirrors)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30, cfg.Search.TimeoutSeconds, "unset keys keep defaults")
	assert.Equal(t, "downloads", cfg.Downloads.Path)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[search\nlimit = "))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[search]\nlimit = 0\n"))
	assert.ErrorContains(t, err, "search.limit")

	_, err = Load(writeConfig(t, "[search]\nmirrors = []\n"))
	assert.ErrorContains(t, err, "search.mirrors")

	_, err = Load(writeConfig(t, "[cache]\nttl_seconds = -1\n"))
	assert.ErrorContains(t, err, "cache.ttl_seconds")
}

func TestCacheTTL(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[cache]\nttl_seconds = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL(), "zero falls back to the default")

	cfg.Apply(Env{CacheTTL: 500 * time.Millisecond})
	assert.Equal(t, time.Second, cfg.CacheTTL(), "sub-second values round up")

	cfg.Apply(Env{CacheTTL: 90 * time.Second})
	assert.Equal(t, 90*time.Second, cfg.CacheTTL())
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "[downloads]\npath = \"from-file\"\n[log]\nlevel = \"warn\"\n")

	t.Setenv("TORRENT_CLI_CONFIG", path)
	t.Setenv("TORRENT_CLI_DOWNLOAD_DIR", "from-env")
	t.Setenv("TORRENT_CLI_MIRRORS", "a.example,b.example")
	t.Setenv("TORRENT_CLI_LOG_FILE", "/tmp/cli.log")
	t.Setenv("TORRENT_CLI_NO_CACHE", "true")
	t.Setenv("TORRENT_CLI_CACHE_TTL", "1m")

	cfg, gotPath, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, path, gotPath)
	assert.Equal(t, "from-env", cfg.Downloads.Path)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Search.Mirrors)
	assert.Equal(t, "warn", cfg.Log.Level, "file value kept when env is unset")
	assert.Equal(t, "/tmp/cli.log", cfg.Log.File)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoadFromEnv_BadValue(t *testing.T) {
	t.Setenv("TORRENT_CLI_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("TORRENT_CLI_CACHE_TTL", "forever")

	_, _, err := LoadFromEnv()
	assert.ErrorContains(t, err, "error processing env")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Search.Mirrors = []string{"only.example"}
	cfg.Search.RatePerSecond = 0.5
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
