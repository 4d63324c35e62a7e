// Package config reads the process configuration from the environment,
// after loading any .env files, and resolves provider credentials against
// the settings table.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvFiles are loaded, in order, before the environment is read. Variables
// already set are never overridden, so earlier files win over later ones.
var EnvFiles = []string{".env.local", ".env"}

type Config struct{ v *viper.Viper }

func New() *Config {
	for _, f := range EnvFiles {
		// Missing files are fine.
		_ = godotenv.Load(f)
	}

	vv := viper.New()
	vv.AutomaticEnv()
	vv.SetDefault("DATABASE_PATH", "game_library.db")
	vv.SetDefault("ADDR", ":5050")
	vv.SetDefault("MATCH_WORKERS", 5)
	vv.SetDefault("IGDB_REQUESTS_PER_SECOND", 4.0)
	vv.SetDefault("METACRITIC_REQUEST_INTERVAL", 500*time.Millisecond)
	vv.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	vv.SetDefault("RETRY_STATE_DIR", ".")
	vv.SetDefault("EXPORTS_DIR", "exports")
	vv.SetDefault("EXCLUDE_NAME_SUFFIXES", "- Amazon Prime,- Amazon Luna")
	vv.SetDefault("REPORT_FILE", "report.tsv")
	vv.SetDefault("REPORT_INTERVAL", time.Minute)
	vv.SetDefault("LOG_MAX_SIZE_MB", 10)
	vv.SetDefault("LOG_MAX_BACKUPS", 3)
	vv.SetDefault("LOG_MAX_AGE_DAYS", 28)
	return &Config{v: vv}
}

func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// GetDatabasePath returns the sqlite file from DATABASE_PATH.
func (c *Config) GetDatabasePath() string { return c.v.GetString("DATABASE_PATH") }

// GetAddr returns the http listen address from ADDR, like ":5050".
func (c *Config) GetAddr() string { return c.v.GetString("ADDR") }

// GetMatchWorkers returns how many provider lookups a match pass runs at
// once, from MATCH_WORKERS. Defaults to 5.
func (c *Config) GetMatchWorkers() int {
	if n := c.v.GetInt("MATCH_WORKERS"); n > 0 {
		return n
	}
	return 5
}

// GetIGDBRate returns IGDB_REQUESTS_PER_SECOND. Defaults to 4, IGDB's limit.
func (c *Config) GetIGDBRate() float64 {
	if r := c.v.GetFloat64("IGDB_REQUESTS_PER_SECOND"); r > 0 {
		return r
	}
	return 4
}

// GetMetacriticInterval returns the minimum pause between Metacritic
// requests, from METACRITIC_REQUEST_INTERVAL, like "500ms".
func (c *Config) GetMetacriticInterval() time.Duration {
	return c.duration("METACRITIC_REQUEST_INTERVAL", 500*time.Millisecond)
}

// GetHTTPTimeout returns HTTP_TIMEOUT, applied to every provider request.
func (c *Config) GetHTTPTimeout() time.Duration {
	return c.duration("HTTP_TIMEOUT", 15*time.Second)
}

// GetCacheDir returns CACHE_DIR. Empty disables the page cache.
func (c *Config) GetCacheDir() string { return c.v.GetString("CACHE_DIR") }

// GetRetryStateDir returns RETRY_STATE_DIR, where each provider's pending
// Retry-After pause is kept across restarts.
func (c *Config) GetRetryStateDir() string { return c.v.GetString("RETRY_STATE_DIR") }

// GetExportsDir returns EXPORTS_DIR, which holds one "<store>.json" export
// per store.
func (c *Config) GetExportsDir() string { return c.v.GetString("EXPORTS_DIR") }

// GetExcludeNameSuffixes returns EXCLUDE_NAME_SUFFIXES, a comma separated
// list. Listings leave out games whose name ends with any of them.
func (c *Config) GetExcludeNameSuffixes() []string {
	return list(c.v.GetString("EXCLUDE_NAME_SUFFIXES"))
}

// GetLocalGamesDirs returns LOCAL_GAMES_DIRS, a comma separated list.
func (c *Config) GetLocalGamesDirs() []string {
	return list(c.v.GetString("LOCAL_GAMES_DIRS"))
}

// GetReportFile returns REPORT_FILE, the tsv the refresh reporter appends to.
func (c *Config) GetReportFile() string { return c.v.GetString("REPORT_FILE") }

func (c *Config) GetReportInterval() time.Duration {
	return c.duration("REPORT_INTERVAL", time.Minute)
}

// GetLogLevel returns the log level from env var LOG_LEVEL mapped to slog.Level.
// Recognized values: debug, info (default), warn|warning, error.
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.v.GetString("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) duration(key string, def time.Duration) time.Duration {
	if d := c.v.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
