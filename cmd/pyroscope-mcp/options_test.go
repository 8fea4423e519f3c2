package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--pyroscope-url", "http://pyro:4040", "--log-level", "debug", "--url", "/?from=now-6h"})
	require.NoError(t, err)
	assert.Equal(t, "http://pyro:4040", opts.BaseURL)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "/?from=now-6h", opts.InitialURL)
	assert.False(t, opts.Version)

	_, err = parseOptions([]string{"--log-level", "loud"})
	assert.Error(t, err)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	t.Setenv("PYROSCOPE_BASE_URL", "")
	t.Setenv("FEED_ADDR", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pyroscope_base_url: http://from-file:4040\nfeed_addr: 127.0.0.1:9000\n"), 0o600))

	cfg, err := loadConfig(&options{Config: path})
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:4040", cfg.PyroscopeBaseURL)
	assert.Equal(t, "127.0.0.1:9000", cfg.FeedAddr)

	cfg, err = loadConfig(&options{Config: path, BaseURL: "http://from-flag:4040"})
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:4040", cfg.PyroscopeBaseURL)
	assert.Equal(t, "127.0.0.1:9000", cfg.FeedAddr)
}
