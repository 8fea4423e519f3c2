package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/pyroscope-mcp/internal/cache"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/feed"
	"github.com/usestring/pyroscope-mcp/internal/logging"
	"github.com/usestring/pyroscope-mcp/internal/mcp"
	"github.com/usestring/pyroscope-mcp/internal/mcp/tools"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/query"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/storage"
	"github.com/usestring/pyroscope-mcp/internal/store"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

const feedShutdownTimeout = 5 * time.Second

// Server is the pyroscope MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	feed       *feed.Server
	store      *store.Store
	db         *storage.SQLiteStore
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin pyroscope tools.
//
// A nil client is built from the configuration. Use functional options to
// configure logging, add custom tools, etc.
func NewServer(ctx context.Context, c *client.Client, opts ...Option) (*Server, error) {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.FromConfig(cfg.config)
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	s, err := build(ctx, c, cfg)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}
	s.logCleanup = logCleanup
	return s, nil
}

func build(ctx context.Context, c *client.Client, cfg *serverConfig) (*Server, error) {
	conf := cfg.config

	if c == nil {
		httpClient := cfg.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: conf.HTTPClientTimeout()}
		}
		c = client.New(
			client.WithBaseURL(conf.PyroscopeBaseURL),
			client.WithHTTPClient(httpClient),
		)
	}

	history, err := querysync.NewMemoryHistory(conf.InitialURL)
	if err != nil {
		return nil, fmt.Errorf("invalid initial url: %w", err)
	}

	db, err := storage.Open(conf.UIStateDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open ui state db: %w", err)
	}

	storeOpts := []store.Option{
		store.WithPersister(db),
		store.WithLocation(history),
	}
	if cfg.dispatchLogging {
		storeOpts = append(storeOpts, store.WithMiddleware(store.LoggingMiddleware))
	}
	st, err := store.New(ctx, storeOpts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	labelCache := cache.NewLabelValuesCache(conf.LabelValuesCacheMaxItems, conf.LabelValuesCacheTTL())
	center := notify.NewCenter(conf.NotificationMax)
	fetcher := continuous.NewFetcher(c, center,
		continuous.WithLabelValuesCache(labelCache),
		continuous.WithWorkers(conf.FetchWorkers),
	)
	engine := query.NewEngine()

	toolDeps := &tools.Deps{
		Store:   st,
		Fetcher: fetcher,
		History: history,
		Notify:  center,
		Query:   engine,
		Config:  conf,
	}

	// Public deps (same values, different type for public API)
	deps := &Deps{
		Client:  c,
		Store:   st,
		Fetcher: fetcher,
		History: history,
		Notify:  center,
		Cache:   labelCache,
		Query:   engine,
		Config:  conf,
	}

	var internalOpts []mcp.ServerOption
	if cfg.builtinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if cfg.builtinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, ext := range cfg.extensions {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			ext(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = st.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	s := &Server{
		internal: internal,
		store:    st,
		db:       db,
		deps:     deps,
	}
	if conf.FeedAddr != "" {
		s.feed = feed.New(conf.FeedAddr, st,
			feed.WithNotifications(center),
			feed.WithLocation(history),
		)
	}

	slog.Info("server ready",
		slog.String("pyroscope", c.BaseURL()),
		slog.String("initial_url", conf.InitialURL),
		slog.Bool("feed", s.feed != nil),
	)
	return s, nil
}

// Run starts the MCP server with stdio transport, and the live feed when
// FeedAddr is configured. It returns when the client disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.feed == nil {
		return s.internal.Run(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return s.internal.Run(runCtx)
	})
	g.Go(func() error {
		defer cancel()
		if err := s.feed.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), feedShutdownTimeout)
		defer done()
		return s.feed.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close flushes the ui settings and releases server resources.
func (s *Server) Close() error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing ui state db: %w", err))
	}
	if s.logCleanup != nil {
		if err := s.logCleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
