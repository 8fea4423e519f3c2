package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/pyroscope-mcp/internal/config"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/mcp/tools"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/query"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/store"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

type stubAPI struct{}

func (stubAPI) RenderSingle(context.Context, client.RenderParams) (*client.RenderOutput, error) {
	return &client.RenderOutput{
		Timeline: client.Timeline{StartTime: 1700000000, Samples: []uint64{1, 1}, DurationDelta: 10},
		Profile:  client.Profile{Flamebearer: map[string]any{"names": []any{"total"}}},
	}, nil
}

func (stubAPI) ListLabels(context.Context, string) ([]string, error) {
	return []string{"env"}, nil
}

func (stubAPI) ListLabelValues(context.Context, string, string) ([]string, error) {
	return []string{"prod"}, nil
}

func newTestServer(t *testing.T) (*Server, *sdkmcp.ClientSession) {
	t.Helper()
	ctx := context.Background()

	history, err := querysync.NewMemoryHistory("/")
	require.NoError(t, err)
	st, err := store.New(ctx, store.WithLocation(history))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	center := notify.NewCenter(10)
	deps := &tools.Deps{
		Store:   st,
		Fetcher: continuous.NewFetcher(stubAPI{}, center),
		History: history,
		Notify:  center,
		Query:   query.NewEngine(),
		Config:  config.Default(),
	}
	srv, err := NewServer(deps, WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	c := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return srv, cs
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
	_, err = NewServer(&tools.Deps{})
	assert.Error(t, err)
}

func TestServer_ListsBuiltins(t *testing.T) {
	_, cs := newTestServer(t)
	ctx := context.Background()

	toolList, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(toolList.Tools))
	for _, tool := range toolList.Tools {
		names = append(names, tool.Name)
	}
	assert.Len(t, names, 11)
	assert.Contains(t, names, "pyroscope_view_state")
	assert.Contains(t, names, "pyroscope_query_profile")

	promptList, err := cs.ListPrompts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, promptList.Prompts, 3)
}

func TestServer_CallToolAndReadResource(t *testing.T) {
	_, cs := newTestServer(t)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "pyroscope_set_query",
		Arguments: map[string]any{"query": "app.cpu{}"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "pyroscope_fetch_single_view",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	read, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "pyroscope://state"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)

	var state tools.ViewStateOutput
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &state))
	assert.Equal(t, "app.cpu{}", state.Selection.Query)
	assert.Equal(t, continuous.StatusLoaded, state.SingleView.Status)
	assert.Equal(t, "/?query=app.cpu%7B%7D", state.URL)

	read, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "pyroscope://profile"})
	require.NoError(t, err)
	assert.Contains(t, read.Contents[0].Text, `"flamebearer"`)
}

func TestServer_ToolErrorIsReported(t *testing.T) {
	_, cs := newTestServer(t)

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "pyroscope_query_profile",
		Arguments: map[string]any{"expression": "."},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseResourceURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    map[string]string
		wantErr bool
	}{
		{uri: "pyroscope://state", want: map[string]string{"type": "state"}},
		{uri: "pyroscope://tags/env", want: map[string]string{"type": "tags", "label": "env"}},
		{uri: "pyroscope://tags/", wantErr: true},
		{uri: "pyroscope://state/extra", wantErr: true},
		{uri: "pyroscope://", wantErr: true},
		{uri: "pyroscope://flows/1", wantErr: true},
		{uri: "http://state", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := parseResourceURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
