package mcpsrv

import (
	"github.com/usestring/pyroscope-mcp/internal/cache"
	"github.com/usestring/pyroscope-mcp/internal/config"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/query"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/store"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Client  *client.Client
	Store   *store.Store
	Fetcher *continuous.Fetcher
	History *querysync.MemoryHistory
	Notify  *notify.Center
	Cache   *cache.LabelValuesCache
	Query   *query.Engine
	Config  *config.Config
}
