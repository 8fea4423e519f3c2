// Package prompts contains MCP prompt implementations for pyroscope-mcp.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	PyroscopeBaseURL string
	FeedEnabled      bool
}
