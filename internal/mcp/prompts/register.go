package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "tool_guide",
		Description: "Short guide to the pyroscope_* tools: which call changes state, which one fetches, and what each costs in context.",
	}, HandleToolGuide(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "investigate_profile",
		Description: "RECOMMENDED: Walk through selecting, rendering and inspecting a profile for one application.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "query",
				Description: "Profile query, e.g. myapp.cpu{}",
				Required:    false,
			},
			{
				Name:        "from",
				Description: "Start of the time range (default: now-1h)",
				Required:    false,
			},
		},
	}, HandleInvestigateProfile(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "compare_ranges",
		Description: "Set up a left/right comparison of two time ranges for the same query, e.g. before and after a deploy.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "query",
				Description: "Profile query to compare",
				Required:    false,
			},
			{
				Name:        "left_from",
				Description: "Start of the baseline range",
				Required:    false,
			},
			{
				Name:        "right_from",
				Description: "Start of the comparison range",
				Required:    false,
			},
		},
	}, HandleCompareRanges(cfg))
}

func promptResult(description, text string) *sdkmcp.GetPromptResult {
	return &sdkmcp.GetPromptResult{
		Description: description,
		Messages: []*sdkmcp.PromptMessage{
			{
				Role:    "user",
				Content: &sdkmcp.TextContent{Text: text},
			},
		},
	}
}

func argOr(req *sdkmcp.GetPromptRequest, name, fallback string) string {
	if req == nil || req.Params == nil || req.Params.Arguments == nil {
		return fallback
	}
	if v, ok := req.Params.Arguments[name]; ok && v != "" {
		return v
	}
	return fallback
}
