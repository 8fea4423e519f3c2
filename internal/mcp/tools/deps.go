package tools

import (
	"github.com/usestring/pyroscope-mcp/internal/config"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/query"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/store"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Store   *store.Store
	Fetcher *continuous.Fetcher
	History *querysync.MemoryHistory
	Notify  *notify.Center
	Query   *query.Engine
	Config  *config.Config
}
