// Package config handles application configuration via a TOML file with
// environment variable overrides. The file lives at
// ~/.config/torrent-cli/config.toml and holds the download directory,
// index mirrors, HTTP cache and logging settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override (TORRENT_CLI_MIRRORS, ...).
const EnvPrefix = "TORRENT_CLI"

// DefaultMirrors are tried in order when no mirrors are configured.
var DefaultMirrors = []string{"1337x.to", "x1337x.se", "x1337x.ws", "x1337x.eu"}

// DefaultCacheTTL applies when cache.ttl_seconds is 0.
const DefaultCacheTTL = 300 * time.Second

// Config holds application configuration
type Config struct {
	Downloads DownloadsConfig `toml:"downloads"`
	Search    SearchConfig    `toml:"search"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
}

// DownloadsConfig holds download settings
type DownloadsConfig struct {
	// Path is resolved against the working directory and must stay inside it.
	Path string `toml:"path"`
}

// SearchConfig holds index settings
type SearchConfig struct {
	Limit          int      `toml:"limit"`
	Mirrors        []string `toml:"mirrors"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	RatePerSecond  float64  `toml:"rate_per_second"` // 0 disables rate limiting
}

// CacheConfig holds HTTP response cache settings
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	TTLSeconds int    `toml:"ttl_seconds"` // 0 uses DefaultCacheTTL
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty logs to stderr
}

// Env holds the environment overrides. Unset variables leave the file
// values alone.
type Env struct {
	Config      string        `envconfig:"CONFIG"`
	DownloadDir string        `envconfig:"DOWNLOAD_DIR"`
	Mirrors     []string      `envconfig:"MIRRORS"`
	LogLevel    string        `envconfig:"LOG_LEVEL"`
	LogFile     string        `envconfig:"LOG_FILE"`
	NoCache     bool          `envconfig:"NO_CACHE"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL"`
}

// Default returns the default configuration
func Default() Config {
	dir := StateDir()

	return Config{
		Downloads: DownloadsConfig{
			Path: "downloads",
		},
		Search: SearchConfig{
			Limit:          10,
			Mirrors:        append([]string(nil), DefaultMirrors...),
			TimeoutSeconds: 30,
			RatePerSecond:  2,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       filepath.Join(dir, "http-cache.db"),
			TTLSeconds: 300,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "torrent-cli.log"),
		},
	}
}

// StateDir is where the cache database and log file live by default.
func StateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "torrent-cli")
	}
	return filepath.Join(os.TempDir(), "torrent-cli")
}

// Path returns the default path to the config file
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "torrent-cli", "config.toml")
}

// Load reads config from path, returning defaults when the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadFromEnv reads the environment overrides, loads the config file they
// point at (Path() by default) and applies the overrides on top.
func LoadFromEnv() (Config, string, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Default(), "", fmt.Errorf("error processing env: %w", err)
	}

	path := env.Config
	if path == "" {
		path = Path()
	}

	cfg, err := Load(path)
	if err != nil {
		return cfg, path, err
	}

	cfg.Apply(env)
	return cfg, path, cfg.Validate()
}

// Apply overlays the set fields of env onto c.
func (c *Config) Apply(env Env) {
	if env.DownloadDir != "" {
		c.Downloads.Path = env.DownloadDir
	}
	if len(env.Mirrors) > 0 {
		c.Search.Mirrors = env.Mirrors
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		c.Log.File = env.LogFile
	}
	if env.NoCache {
		c.Cache.Enabled = false
	}
	if env.CacheTTL > 0 {
		c.Cache.TTLSeconds = int(math.Ceil(env.CacheTTL.Seconds()))
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Search.Limit < 1:
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	case len(c.Search.Mirrors) == 0:
		return errors.New("search.mirrors must not be empty")
	case c.Search.TimeoutSeconds < 0:
		return fmt.Errorf("search.timeout_seconds must not be negative, got %d", c.Search.TimeoutSeconds)
	case c.Search.RatePerSecond < 0:
		return fmt.Errorf("search.rate_per_second must not be negative, got %v", c.Search.RatePerSecond)
	case c.Cache.TTLSeconds < 0:
		return fmt.Errorf("cache.ttl_seconds must not be negative, got %d", c.Cache.TTLSeconds)
	case c.Cache.Enabled && c.Cache.Path == "":
		return errors.New("cache.path must be set when the cache is enabled")
	}
	return nil
}

// Timeout is the per-request HTTP timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// CacheTTL is how long cached responses stay fresh.
func (c Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes config to path, creating its directory.
func Save(path string, cfg Config) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
