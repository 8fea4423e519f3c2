package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleToolGuide serves the tool usage guide. The live feed section is
// included only when the feed server is enabled.
func HandleToolGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Efficient Tool Usage Guide\n\n")
		if cfg.PyroscopeBaseURL != "" {
			sb.WriteString("Connected to Pyroscope at `" + cfg.PyroscopeBaseURL + "`.\n\n")
		}

		// --- State vs fetch ---
		sb.WriteString("## Changing State vs Fetching\n\n")
		sb.WriteString("| Goal | Tool | Cost |\n")
		sb.WriteString("|------|------|------|\n")
		sb.WriteString("| See the current selection, statuses and settings | `pyroscope_view_state` | Low |\n")
		sb.WriteString("| Change from/until or the comparison ranges | `pyroscope_set_time_range` | Low |\n")
		sb.WriteString("| Change the query or node limit | `pyroscope_set_query` | Low |\n")
		sb.WriteString("| Open a shared URL or go back | `pyroscope_navigate` | Low |\n")
		sb.WriteString("| Render the profile for the selection | `pyroscope_fetch_single_view` | Medium |\n")
		sb.WriteString("| List labels (and optionally their values) | `pyroscope_fetch_tags` | Medium |\n")
		sb.WriteString("| Look inside the rendered profile | `pyroscope_query_profile` | Depends on expression |\n")

		sb.WriteString("\n**Key rules**:\n")
		sb.WriteString("- Setters never fetch. Call `pyroscope_fetch_single_view` after changing the selection.\n")
		sb.WriteString("- Invalid values fall back to defaults (`now-1h`, `now`, 1024 nodes) instead of failing.\n")
		sb.WriteString("- Only the newest fetch of each kind is applied; a superseded response is ignored.\n")
		sb.WriteString("- Failed fetches raise notifications. Read them with `pyroscope_notifications`.\n")

		// --- Query profile ---
		sb.WriteString("\n## Query Profile (jq)\n")
		sb.WriteString("The input is `{timeline, profile}`. Useful expressions:\n")
		sb.WriteString("- `keys`, `.profile | keys` to discover the shape\n")
		sb.WriteString("- `.profile.flamebearer.names[:20]` for the first function names\n")
		sb.WriteString("- `.timeline.samples | add` for the total sample count\n")
		sb.WriteString("- Set `deduplicate: true` to remove duplicate values\n")

		// --- Resources ---
		sb.WriteString("\n## Resources\n")
		sb.WriteString("- `pyroscope://state`: full view state, same as `pyroscope_view_state`\n")
		sb.WriteString("- `pyroscope://profile`: raw rendered profile. High context cost; prefer `pyroscope_query_profile`\n")
		sb.WriteString("- `pyroscope://notifications`: notification history\n")

		if cfg.FeedEnabled {
			sb.WriteString("\n## Live Feed\n")
			sb.WriteString("A websocket feed at `/ws` pushes the state on every change so a human can follow along.\n")
		}

		return promptResult("Essential guide for efficient tool usage", sb.String()), nil
	}
}
