// Package client provides a Go SDK for the Pyroscope server HTTP API used by
// the continuous-profiling view.
//
// # Quick Start
//
// Create a client and list the labels known for a query:
//
//	c := client.New()
//	labels, err := c.ListLabels(ctx, `myapp.cpu{}`)
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithBaseURL("http://pyroscope:4040"),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Rendering
//
// RenderSingle renders one profile for a time range. Time bounds accept the
// same expressions as the web UI ("now-1h", unix seconds):
//
//	out, err := c.RenderSingle(ctx, client.RenderParams{
//	    From:     "now-1h",
//	    Until:    "now",
//	    Query:    `myapp.cpu{}`,
//	    MaxNodes: 1024,
//	})
//
// # Errors
//
// Responses with status >= 400 return *APIError. Responses whose body does not
// match the expected shape return *ValidationError, which lists every problem
// found by the schema check:
//
//	var verr *client.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.Problems)
//	}
package client
