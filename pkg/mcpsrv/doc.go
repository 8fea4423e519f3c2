// Package mcpsrv provides an extensible MCP server for Pyroscope.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin pyroscope tools, prompts, and resources. Users can extend
// the server with custom tools, prompts, and resources using functional
// options.
//
// # Basic Usage
//
// Create a server configured from the environment:
//
//	server, err := mcpsrv.NewServer(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// Pass a client to talk to a specific Pyroscope instance:
//
//	server, err := mcpsrv.NewServer(ctx, client.New(client.WithBaseURL("http://pyroscope:4040")))
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Label string `json:"label"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(ctx, nil,
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "count_values", Description: "Count label values"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	                values, err := d.Fetcher.FetchTagValues(ctx, d.Store, in.Label, "")
//	                return nil, MyOutput{Count: len(values)}, err
//	            }
//	        }),
//	)
//
// # Configuration
//
// Configure logging and other options:
//
//	server, err := mcpsrv.NewServer(ctx, nil,
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/pyroscope-mcp.log"),
//	)
package mcpsrv
