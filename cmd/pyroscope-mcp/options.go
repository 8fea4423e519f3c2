package main

import (
	goflags "github.com/jessevdk/go-flags"

	"github.com/usestring/pyroscope-mcp/internal/config"
)

// options are the command line flags. Flags override the environment, which
// overrides the config file.
type options struct {
	Config     string `short:"c" long:"config" description:"YAML config file" env:"PYROSCOPE_MCP_CONFIG"`
	BaseURL    string `long:"pyroscope-url" description:"Pyroscope server base URL"`
	InitialURL string `long:"url" description:"Initial view URL, e.g. /?query=app.cpu{}&from=now-6h"`
	FeedAddr   string `long:"feed-addr" description:"Listen address of the live feed (empty disables it)"`
	LogLevel   string `long:"log-level" description:"Log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	LogFile    string `long:"log-file" description:"Log file path (default: stderr only)"`
	Version    bool   `long:"version" description:"Print the version and exit"`
}

// parseOptions parses args. A nil error with Version set means the caller
// should print the version and exit.
func parseOptions(args []string) (*options, error) {
	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "pyroscope-mcp"
	parser.LongDescription = "MCP server that lets an agent drive the Pyroscope single view: select a time range and query, render, and inspect profiles."

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

// loadConfig reads the config file named by opts and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.Config)
	if err != nil {
		return nil, err
	}

	if opts.BaseURL != "" {
		cfg.PyroscopeBaseURL = opts.BaseURL
	}
	if opts.InitialURL != "" {
		cfg.InitialURL = opts.InitialURL
	}
	if opts.FeedAddr != "" {
		cfg.FeedAddr = opts.FeedAddr
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	return cfg, cfg.Validate()
}
