package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleCompareRanges sets up a comparison between two time ranges.
func HandleCompareRanges(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		query := argOr(req, "query", "")
		leftFrom := argOr(req, "left_from", "now-2h")
		rightFrom := argOr(req, "right_from", "now-1h")

		var sb strings.Builder

		sb.WriteString("# Compare Two Time Ranges\n\n")
		sb.WriteString("The comparison ranges live next to the main range in the same selection. ")
		sb.WriteString("They are kept in the URL, so the comparison can be shared.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		if query != "" {
			fmt.Fprintf(&sb, "1. `pyroscope_set_query(query: %q)`\n", query)
		} else {
			sb.WriteString("1. Make sure a query is selected (`pyroscope_view_state`)\n")
		}
		fmt.Fprintf(&sb, "2. `pyroscope_set_time_range(left_from: %q, right_from: %q)`\n", leftFrom, rightFrom)
		sb.WriteString("3. For each side, set the main range to it and call `pyroscope_fetch_single_view`, ")
		sb.WriteString("then record the totals with `pyroscope_query_profile`\n")
		sb.WriteString("4. Report the functions whose share of samples changed the most\n")

		return promptResult("Compare two time ranges", sb.String()), nil
	}
}
