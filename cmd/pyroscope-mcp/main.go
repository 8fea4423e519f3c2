package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goflags "github.com/jessevdk/go-flags"

	"github.com/usestring/pyroscope-mcp/internal/mcp"
	"github.com/usestring/pyroscope-mcp/pkg/mcpsrv"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opts.Version {
		fmt.Printf("pyroscope-mcp %s\n", mcp.Version)
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyroscope-mcp: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The Pyroscope client is built from cfg (PYROSCOPE_BASE_URL,
	// HTTP_CLIENT_TIMEOUT_MS).
	serverOpts := []mcpsrv.Option{mcpsrv.WithConfig(cfg)}
	if cfg.LogLevel == "debug" {
		serverOpts = append(serverOpts, mcpsrv.WithDispatchLogging())
	}
	server, err := mcpsrv.NewServer(ctx, nil, serverOpts...)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting pyroscope MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		server.Close()
		os.Exit(1)
	}

	slog.Info("server stopped")
}
