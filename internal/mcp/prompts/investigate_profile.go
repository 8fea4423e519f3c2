package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleInvestigateProfile implements the single-profile investigation
// workflow.
func HandleInvestigateProfile(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		query := argOr(req, "query", "")
		from := argOr(req, "from", "now-1h")

		var sb strings.Builder

		sb.WriteString("# Investigate a Continuous Profile\n\n")
		sb.WriteString("You are a performance engineer. Your goal is to find where the application spends its samples ")
		sb.WriteString("in the selected time range and explain it with concrete function names.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		if query == "" {
			sb.WriteString("1. **Pick an application** -- call `pyroscope_fetch_tags` to see which labels exist, ")
			sb.WriteString("then `pyroscope_set_query` with the application query.\n")
		} else {
			fmt.Fprintf(&sb, "1. **Select the query** -- `pyroscope_set_query(query: %q)`\n", query)
		}
		fmt.Fprintf(&sb, "2. **Select the range** -- `pyroscope_set_time_range(from: %q)`\n", from)
		sb.WriteString("3. **Render** -- `pyroscope_fetch_single_view`. Check `single_view.total_samples`:\n")
		sb.WriteString("   - 0 samples: widen the range or check the query\n")
		sb.WriteString("   - a failure: read `pyroscope_notifications` before retrying\n")
		sb.WriteString("4. **Inspect** -- `pyroscope_query_profile` with small expressions first ")
		sb.WriteString("(`.profile | keys`, `.profile.flamebearer.names[:20]`)\n")
		sb.WriteString("5. **Narrow down** -- use `pyroscope_fetch_tags(with_values: true)` to find a label ")
		sb.WriteString("that splits the traffic, add it to the query and render again\n\n")

		sb.WriteString("## Output\n\n")
		sb.WriteString("Report the top functions by samples, the range and query used, and the URL from ")
		sb.WriteString("`pyroscope_view_state` so the view can be reopened.\n")

		return promptResult("Investigate a continuous profile", sb.String()), nil
	}
}
