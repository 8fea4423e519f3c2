package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/query"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// QueryProfileInput is the input for pyroscope_query_profile.
type QueryProfileInput struct {
	Expression    string `json:"expression" jsonschema:"required,jq expression evaluated against {timeline, profile}"`
	Deduplicate   bool   `json:"deduplicate,omitempty" jsonschema:"Remove duplicate values (default: false)"`
	MaxResults    int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 200, max: 10000)"`
	MaxArrayItems int    `json:"max_array_items,omitempty" jsonschema:"Trim arrays inside each value to N items (default: no trimming)"`
}

// QueryProfileOutput is the output for pyroscope_query_profile.
type QueryProfileOutput struct {
	Status        string   `json:"status"`
	Values        []any    `json:"values,omitempty"`
	RawCount      int      `json:"raw_count"`
	Truncated     bool     `json:"truncated"`
	ArraysTrimmed bool     `json:"arrays_trimmed,omitempty"`
	Errors        []string `json:"errors,omitempty"`
	Hints         []string `json:"hints,omitempty"`
}

const (
	defaultProfileResults = 200
	maxProfileResults     = 10000
)

// ToolQueryProfile runs a jq expression over the loaded timeline and profile.
// Data kept while a reload is in flight is queried as well.
func ToolQueryProfile(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryProfileInput) (*sdkmcp.CallToolResult, QueryProfileOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryProfileInput) (*sdkmcp.CallToolResult, QueryProfileOutput, error) {
		if input.Expression == "" {
			return nil, QueryProfileOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.Query.ValidateExpression(input.Expression); err != nil {
			return nil, QueryProfileOutput{}, ErrInvalidInput(err.Error())
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultProfileResults
		}
		if maxResults > maxProfileResults {
			maxResults = maxProfileResults
		}

		view := d.Store.ContinuousState().SingleView
		timeline, profile, ok := continuous.ViewData(view)
		if !ok {
			return nil, QueryProfileOutput{}, ErrNotLoaded("single view", "call pyroscope_fetch_single_view first")
		}

		in, err := query.Normalize(client.RenderOutput{Timeline: timeline, Profile: profile})
		if err != nil {
			return nil, QueryProfileOutput{}, err
		}
		result, err := d.Query.Query(ctx, in, input.Expression, query.Options{
			Deduplicate: input.Deduplicate,
			MaxResults:  maxResults,
		})
		if err != nil {
			return nil, QueryProfileOutput{}, fmt.Errorf("running query: %w", err)
		}

		out := QueryProfileOutput{
			Status:    view.Status(),
			Values:    result.Values,
			RawCount:  result.RawCount,
			Truncated: result.Truncated,
			Errors:    result.Errors,
		}
		if input.MaxArrayItems > 0 {
			for i, v := range out.Values {
				var trimmed bool
				out.Values[i], trimmed = query.Trim(v, input.MaxArrayItems)
				out.ArraysTrimmed = out.ArraysTrimmed || trimmed
			}
		}
		if len(out.Values) == 0 && len(out.Errors) == 0 {
			out.Hints = append(out.Hints, "No values matched. Try 'keys', '.profile | keys' or '.profile.flamebearer.names[:20]'.")
		}
		if input.MaxArrayItems == 0 && len(out.Values) > 0 && largeArray(out.Values, 1000) {
			out.Hints = append(out.Hints, "Values contain large arrays. Set max_array_items to preview them.")
		}
		if out.Truncated {
			out.Hints = append(out.Hints, fmt.Sprintf("Truncated at %d values. Narrow the expression or raise max_results.", maxResults))
		}
		return nil, out, nil
	}
}

// largeArray reports whether any array inside values has more than n items.
func largeArray(values []any, n int) bool {
	for _, v := range values {
		if _, trimmed := query.Trim(v, n); trimmed {
			return true
		}
	}
	return false
}
