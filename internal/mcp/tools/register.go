package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_view_state",
		Description: "Show the current single view: URL, selected time ranges and query, render status, known labels, ui settings and the number of active failure notifications. Cheap; call it first.",
	}, ToolViewState(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_set_time_range",
		Description: "Set any of the time bounds (from/until and the left/right comparison ranges). Accepts now, now-1h, now-30m, unix seconds or RFC3339. Updates the URL; does not render. Follow with pyroscope_fetch_single_view.",
	}, ToolSetTimeRange(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_set_query",
		Description: "Set the profile query (e.g. app.cpu{env=\"prod\"}) and optionally max_nodes. Updates the URL; does not render.",
	}, ToolSetQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_navigate",
		Description: "Open a URL (or just a query string like ?from=now-6h&query=app.cpu{}) or go back/forward in history. The selection is read from the URL; absent parameters reset to their defaults.",
	}, ToolNavigate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_history",
		Description: "List the URL history and the index of the current entry.",
	}, ToolHistory(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_fetch_single_view",
		Description: "Render the profile for the current selection. Returns a summary (status, sample counts); use pyroscope_query_profile to inspect the flamegraph. A failed re-render keeps the previous data.",
	}, ToolFetchSingleView(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_fetch_tags",
		Description: "List the labels available for a query (default: current query). Set with_values=true to also fetch every label's values concurrently.",
	}, ToolFetchTags(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_fetch_tag_values",
		Description: "List the values of one label for a query (default: current query). Results are cached briefly.",
	}, ToolFetchTagValues(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_query_profile",
		Description: "Run a jq expression against the loaded {timeline, profile}. Examples: '.timeline.samples | add', '.profile.flamebearer.names[:20]', '.profile.metadata'. Requires a prior pyroscope_fetch_single_view.",
	}, ToolQueryProfile(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_notifications",
		Description: "List failure notifications raised by fetches (e.g. 'Failed to load singleView') and optionally dismiss them.",
	}, ToolNotifications(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "pyroscope_ui_settings",
		Description: "Read or change persisted display preferences (sidebar_collapsed, color_mode). Call with no arguments to read.",
	}, ToolUISettings(d))
}
