package prompts

import (
	"context"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, res *sdkmcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolGuide_FeedSection(t *testing.T) {
	res, err := HandleToolGuide(&Config{})(context.Background(), &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{}})
	require.NoError(t, err)
	assert.NotContains(t, promptText(t, res), "Live Feed")

	res, err = HandleToolGuide(&Config{FeedEnabled: true, PyroscopeBaseURL: "http://pyro:4040"})(context.Background(), &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{}})
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, "Live Feed")
	assert.Contains(t, text, "http://pyro:4040")
}

func TestInvestigateProfile_Arguments(t *testing.T) {
	req := &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{
		Arguments: map[string]string{"query": "app.cpu{}", "from": "now-6h"},
	}}
	res, err := HandleInvestigateProfile(&Config{})(context.Background(), req)
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, `pyroscope_set_query(query: "app.cpu{}")`)
	assert.Contains(t, text, `pyroscope_set_time_range(from: "now-6h")`)

	res, err = HandleInvestigateProfile(&Config{})(context.Background(), &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{}})
	require.NoError(t, err)
	text = promptText(t, res)
	assert.Contains(t, text, "pyroscope_fetch_tags")
	assert.Contains(t, text, `from: "now-1h"`)
}

func TestCompareRanges_Defaults(t *testing.T) {
	res, err := HandleCompareRanges(&Config{})(context.Background(), &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{}})
	require.NoError(t, err)
	assert.Contains(t, promptText(t, res), `left_from: "now-2h", right_from: "now-1h"`)
}
