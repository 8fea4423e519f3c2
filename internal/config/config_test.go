package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PYROSCOPE_BASE_URL", "")
	t.Setenv("FETCH_WORKERS", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:4040", cfg.PyroscopeBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout())
	assert.Equal(t, 4, cfg.FetchWorkers)
	assert.Equal(t, 30*time.Second, cfg.LabelValuesCacheTTL())
	assert.Equal(t, ":memory:", cfg.UIStateDB)
	assert.Equal(t, "/", cfg.InitialURL)
	assert.Equal(t, "", cfg.FeedAddr)
	assert.True(t, cfg.LogCompress)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PYROSCOPE_BASE_URL", "http://pyroscope:4040")
	t.Setenv("HTTP_CLIENT_TIMEOUT_MS", "2500")
	t.Setenv("FETCH_WORKERS", "not-a-number")
	t.Setenv("LOG_COMPRESS", "off")
	t.Setenv("INITIAL_URL", "/?query=app.cpu%7B%7D")

	cfg := Load()
	assert.Equal(t, "http://pyroscope:4040", cfg.PyroscopeBaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.HTTPClientTimeout())
	assert.Equal(t, 4, cfg.FetchWorkers, "unparsable values keep the default")
	assert.False(t, cfg.LogCompress)
	assert.Equal(t, "/?query=app.cpu%7B%7D", cfg.InitialURL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pyroscope_base_url: http://from-file:4040
fetch_workers: 8
feed_addr: 127.0.0.1:9090
log_level: debug
`), 0o600))
	t.Setenv("FETCH_WORKERS", "12")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:4040", cfg.PyroscopeBaseURL)
	assert.Equal(t, 12, cfg.FetchWorkers, "environment wins over the file")
	assert.Equal(t, "127.0.0.1:9090", cfg.FeedAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10000, cfg.HTTPClientTimeoutMs, "unset keys keep defaults")
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().UIStateDB, cfg.UIStateDB)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch_workers: [1, 2"), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative base url", func(c *Config) { c.PyroscopeBaseURL = "localhost:4040/x" }, "base url"},
		{"zero timeout", func(c *Config) { c.HTTPClientTimeoutMs = 0 }, "timeout"},
		{"zero workers", func(c *Config) { c.FetchWorkers = 0 }, "workers"},
		{"no db", func(c *Config) { c.UIStateDB = "" }, "ui state db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
