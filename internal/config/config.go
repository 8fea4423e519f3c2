// Package config loads configuration from an optional YAML file and
// environment variables. Environment variables take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Config holds all configuration for the MCP server.
type Config struct {
	PyroscopeBaseURL    string `yaml:"pyroscope_base_url"`     // PYROSCOPE_BASE_URL, default "http://localhost:4040"
	HTTPClientTimeoutMs int    `yaml:"http_client_timeout_ms"` // HTTP_CLIENT_TIMEOUT_MS, default 10000

	FetchWorkers             int `yaml:"fetch_workers"`                // FETCH_WORKERS, default 4
	LabelValuesCacheMaxItems int `yaml:"label_values_cache_max_items"` // LABEL_VALUES_CACHE_MAX_ITEMS, default 256
	LabelValuesCacheTTLMs    int `yaml:"label_values_cache_ttl_ms"`    // LABEL_VALUES_CACHE_TTL_MS, default 30000
	NotificationMax          int `yaml:"notification_max"`             // NOTIFICATION_MAX, default 100

	// UIStateDB is the SQLite database holding ui preferences. ":memory:"
	// keeps them for the lifetime of the process only.
	UIStateDB string `yaml:"ui_state_db"` // UI_STATE_DB, default ":memory:"

	FeedAddr   string `yaml:"feed_addr"`   // FEED_ADDR, default "" (disabled)
	InitialURL string `yaml:"initial_url"` // INITIAL_URL, default "/"

	// Logging configuration
	LogLevel      string `yaml:"log_level"`        // LOG_LEVEL, default "info"
	LogFile       string `yaml:"log_file"`         // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`  // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    `yaml:"log_max_backups"`  // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    `yaml:"log_max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   `yaml:"log_compress"`     // LOG_COMPRESS, default true
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		PyroscopeBaseURL:         client.DefaultBaseURL,
		HTTPClientTimeoutMs:      10000,
		FetchWorkers:             4,
		LabelValuesCacheMaxItems: 256,
		LabelValuesCacheTTLMs:    30000,
		NotificationMax:          notify.DefaultMax,
		UIStateDB:                ":memory:",
		InitialURL:               "/",
		LogLevel:                 "info",
		LogMaxSizeMB:             10,
		LogMaxBackups:            5,
		LogMaxAgeDays:            28,
		LogCompress:              true,
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads the YAML file at path over the defaults, then applies
// environment variables. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.PyroscopeBaseURL = getEnvString("PYROSCOPE_BASE_URL", c.PyroscopeBaseURL)
	c.HTTPClientTimeoutMs = getEnvInt("HTTP_CLIENT_TIMEOUT_MS", c.HTTPClientTimeoutMs)
	c.FetchWorkers = getEnvInt("FETCH_WORKERS", c.FetchWorkers)
	c.LabelValuesCacheMaxItems = getEnvInt("LABEL_VALUES_CACHE_MAX_ITEMS", c.LabelValuesCacheMaxItems)
	c.LabelValuesCacheTTLMs = getEnvInt("LABEL_VALUES_CACHE_TTL_MS", c.LabelValuesCacheTTLMs)
	c.NotificationMax = getEnvInt("NOTIFICATION_MAX", c.NotificationMax)
	c.UIStateDB = getEnvString("UI_STATE_DB", c.UIStateDB)
	c.FeedAddr = getEnvString("FEED_ADDR", c.FeedAddr)
	c.InitialURL = getEnvString("INITIAL_URL", c.InitialURL)

	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = getEnvBool("LOG_COMPRESS", c.LogCompress)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.PyroscopeBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid pyroscope base url %q", c.PyroscopeBaseURL)
	}
	if c.HTTPClientTimeoutMs <= 0 {
		return fmt.Errorf("http client timeout must be positive, got %dms", c.HTTPClientTimeoutMs)
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("fetch workers must be positive, got %d", c.FetchWorkers)
	}
	if c.UIStateDB == "" {
		return errors.New("ui state db must not be empty")
	}
	return nil
}

// HTTPClientTimeout returns the HTTP client timeout.
func (c *Config) HTTPClientTimeout() time.Duration {
	return time.Duration(c.HTTPClientTimeoutMs) * time.Millisecond
}

// LabelValuesCacheTTL returns how long label values stay cached.
func (c *Config) LabelValuesCacheTTL() time.Duration {
	return time.Duration(c.LabelValuesCacheTTLMs) * time.Millisecond
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
