package mcpsrv

import (
	"context"
	"net/http"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/config"
)

type serverConfig struct {
	config     *config.Config
	httpClient *http.Client

	logLevel string
	logFile  string

	dispatchLogging bool
	builtinTools    bool
	builtinPrompts  bool

	// Registered after the builtins, in option order.
	extensions []extension
}

// extension registers something on the MCP server once Deps exist.
type extension func(srv *mcp.Server, d *Deps)

func defaultServerConfig() *serverConfig {
	return &serverConfig{
		config:         config.Load(),
		builtinTools:   true,
		builtinPrompts: true,
	}
}

// Option configures the server.
type Option func(*serverConfig)

// WithLogLevel overrides the configured log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile writes logs to a rotating file at path instead of stderr.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		if c != nil {
			cfg.config = c
		}
	}
}

// WithDispatchLogging logs every dispatched action at debug level.
func WithDispatchLogging() Option {
	return func(cfg *serverConfig) {
		cfg.dispatchLogging = true
	}
}

// WithHTTPClient is used to build the Pyroscope client when NewServer is
// given none.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *serverConfig) {
		cfg.httpClient = c
	}
}

// WithoutBuiltinTools leaves out the pyroscope_* tools and the pyroscope://
// resources.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.builtinTools = false
	}
}

// WithoutBuiltinPrompts leaves out the builtin prompts.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.builtinPrompts = false
	}
}

// WithTool registers a tool whose handler needs nothing from the server.
// The output type is checked the same way as with AddTool.
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.extensions = append(cfg.extensions, func(srv *mcp.Server, _ *Deps) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a tool built from the server's Deps, for tools that
// read the store or drive the fetcher:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "active_alerts", Description: "Count active notifications"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, AlertsInput) (*mcp.CallToolResult, AlertsOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in AlertsInput) (*mcp.CallToolResult, AlertsOutput, error) {
//	            return nil, AlertsOutput{Count: len(d.Notify.Active())}, nil
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, build func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.extensions = append(cfg.extensions, func(srv *mcp.Server, d *Deps) {
			AddTool(srv, tool, build(d))
		})
	}
}

// WithPrompt registers a prompt.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.extensions = append(cfg.extensions, func(srv *mcp.Server, _ *Deps) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResource registers a resource at a fixed URI.
func WithResource(resource *mcp.Resource, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.extensions = append(cfg.extensions, func(srv *mcp.Server, _ *Deps) {
			srv.AddResource(resource, handler)
		})
	}
}

// WithResourceTemplate registers a family of resources matching a URI
// template, e.g. "myapp://apps/{name}".
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.extensions = append(cfg.extensions, func(srv *mcp.Server, _ *Deps) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
