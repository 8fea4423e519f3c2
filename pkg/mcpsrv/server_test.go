package mcpsrv

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/pyroscope-mcp/internal/config"
	"github.com/usestring/pyroscope-mcp/internal/ui"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

type countInput struct{}

type echoInput struct {
	Query string `json:"query"`
}

type echoOutput struct {
	Query string `json:"query"`
}

type countOutput struct {
	Count int `json:"count"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.UIStateDB = filepath.Join(t.TempDir(), "ui.db")
	return cfg
}

func TestNewServer_WiresDeps(t *testing.T) {
	var built bool
	srv, err := NewServer(context.Background(), nil,
		WithConfig(testConfig(t)),
		WithDispatchLogging(),
		WithDepsTool(
			&mcp.Tool{Name: "active_alerts", Description: "Count active notifications"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, countInput) (*mcp.CallToolResult, countOutput, error) {
				built = d.Notify != nil && d.Store != nil
				return func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
					return nil, countOutput{Count: len(d.Notify.Active())}, nil
				}
			},
		),
	)
	require.NoError(t, err)
	defer srv.Close()

	assert.True(t, built)
	d := srv.Deps()
	require.NotNil(t, d.Client)
	assert.Equal(t, client.DefaultBaseURL, d.Client.BaseURL())
	assert.NotNil(t, d.Fetcher)
	assert.NotNil(t, d.Cache)
	assert.NotNil(t, d.Query)
	assert.Nil(t, srv.feed)
}

func TestNewServer_UsesGivenClient(t *testing.T) {
	c := client.New(client.WithBaseURL("http://pyroscope.internal:4040"))
	srv, err := NewServer(context.Background(), c, WithConfig(testConfig(t)))
	require.NoError(t, err)
	defer srv.Close()

	assert.Same(t, c, srv.Deps().Client)
}

func TestNewServer_UISettingsSurviveRestart(t *testing.T) {
	cfg := testConfig(t)

	srv, err := NewServer(context.Background(), nil, WithConfig(cfg))
	require.NoError(t, err)
	srv.Deps().Store.Dispatch(ui.SetColorMode{Mode: ui.ColorModeLight})
	srv.Deps().Store.Dispatch(ui.CollapseSidebar{})
	require.NoError(t, srv.Close())

	srv, err = NewServer(context.Background(), nil, WithConfig(cfg))
	require.NoError(t, err)
	defer srv.Close()

	got := srv.Deps().Store.State().UI
	assert.Equal(t, ui.ColorModeLight, got.ColorMode)
	assert.True(t, got.SidebarCollapsed)
}

func TestNewServer_InitialURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.InitialURL = "/?query=app.cpu%7B%7D&from=now-6h"

	srv, err := NewServer(context.Background(), nil, WithConfig(cfg))
	require.NoError(t, err)
	defer srv.Close()

	st := srv.Deps().Store.ContinuousState()
	assert.Equal(t, "app.cpu{}", st.Query)
	assert.Equal(t, "now-6h", st.From.String())
}

func TestNewServer_FeedEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.FeedAddr = "127.0.0.1:0"

	srv, err := NewServer(context.Background(), nil, WithConfig(cfg))
	require.NoError(t, err)
	defer srv.Close()

	assert.NotNil(t, srv.feed)
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.internal.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	c := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func readText(t *testing.T, cs *mcp.ClientSession, uri string) string {
	t.Helper()
	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: uri})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	return res.Contents[0].Text
}

func TestNewServer_Extensions(t *testing.T) {
	srv, err := NewServer(context.Background(), nil,
		WithConfig(testConfig(t)),
		WithoutBuiltinPrompts(),
		WithTool(&mcp.Tool{Name: "echo_query", Description: "Echo a query"},
			func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoOutput, error) {
				return nil, echoOutput{Query: in.Query}, nil
			}),
		WithPrompt(&mcp.Prompt{Name: "triage", Description: "Triage an app"},
			func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
				return &mcp.GetPromptResult{
					Messages: []*mcp.PromptMessage{
						{Role: "user", Content: &mcp.TextContent{Text: "triage " + req.Params.Arguments["app"]}},
					},
				}, nil
			}),
		WithResource(&mcp.Resource{URI: "ext://version", Name: "version", MIMEType: "text/plain"},
			func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				return &mcp.ReadResourceResult{
					Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: "text/plain", Text: "v1"}},
				}, nil
			}),
		WithResourceTemplate(&mcp.ResourceTemplate{URITemplate: "ext://apps/{name}", Name: "app", MIMEType: "text/plain"},
			func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				return &mcp.ReadResourceResult{
					Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: "text/plain", Text: "app at " + req.Params.URI}},
				}, nil
			}),
	)
	require.NoError(t, err)
	defer srv.Close()

	cs := connect(t, srv)
	ctx := context.Background()

	toolList, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, toolList.Tools, 12, "builtin tools plus the custom one")

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "echo_query", Arguments: map[string]any{"query": "app.cpu{}"}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, `"query":"app.cpu{}"`)

	promptList, err := cs.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, promptList.Prompts, 1)
	assert.Equal(t, "triage", promptList.Prompts[0].Name)

	prompt, err := cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: "triage", Arguments: map[string]string{"app": "checkout"}})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	assert.Equal(t, "triage checkout", prompt.Messages[0].Content.(*mcp.TextContent).Text)

	assert.Equal(t, "v1", readText(t, cs, "ext://version"))
	assert.Equal(t, "app at ext://apps/checkout", readText(t, cs, "ext://apps/checkout"))
	assert.Contains(t, readText(t, cs, "pyroscope://state"), `"selection"`)
}

func TestNewServer_WithoutBuiltinTools(t *testing.T) {
	srv, err := NewServer(context.Background(), nil,
		WithConfig(testConfig(t)),
		WithoutBuiltinTools(),
		WithTool(&mcp.Tool{Name: "echo_query", Description: "Echo a query"},
			func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoOutput, error) {
				return nil, echoOutput{Query: in.Query}, nil
			}),
		WithResource(&mcp.Resource{URI: "ext://version", Name: "version", MIMEType: "text/plain"},
			func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				return &mcp.ReadResourceResult{
					Contents: []*mcp.ResourceContents{{URI: req.Params.URI, Text: "v1"}},
				}, nil
			}),
	)
	require.NoError(t, err)
	defer srv.Close()

	cs := connect(t, srv)
	ctx := context.Background()

	toolList, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, toolList.Tools, 1)
	assert.Equal(t, "echo_query", toolList.Tools[0].Name)

	resources, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, resources.Resources, 1)
	assert.Equal(t, "ext://version", resources.Resources[0].URI)

	promptList, err := cs.ListPrompts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, promptList.Prompts, 3, "builtin prompts stay on")
}

func TestNewServer_LoggingAndHTTPClientOverrides(t *testing.T) {
	cfg := testConfig(t)
	logFile := filepath.Join(t.TempDir(), "logs", "server.log")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv, err := NewServer(context.Background(), nil,
		WithConfig(cfg),
		WithLogLevel("info"),
		WithLogFile(logFile),
		WithHTTPClient(&http.Client{Timeout: time.Second}),
	)
	require.NoError(t, err)
	require.NotNil(t, srv.Deps().Client)
	require.NoError(t, srv.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server ready")
}
