package tools

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/continuous"
)

// FetchSingleViewInput is the input for pyroscope_fetch_single_view.
type FetchSingleViewInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Issue a new refresh token before rendering (re-render unchanged parameters)"`
}

// FetchSingleViewOutput is the output for pyroscope_fetch_single_view.
type FetchSingleViewOutput struct {
	Selection  Selection         `json:"selection"`
	SingleView SingleViewSummary `json:"single_view"`
	Hints      []string          `json:"hints,omitempty"`
}

// FetchTagsInput is the input for pyroscope_fetch_tags.
type FetchTagsInput struct {
	Query      string `json:"query,omitempty" jsonschema:"Query to list labels for (default: the current query)"`
	WithValues bool   `json:"with_values,omitempty" jsonschema:"Also fetch the values of every label"`
}

// FetchTagsOutput is the output for pyroscope_fetch_tags.
type FetchTagsOutput struct {
	Tags   TagsSummary `json:"tags"`
	Errors []string    `json:"errors,omitempty"`
}

// FetchTagValuesInput is the input for pyroscope_fetch_tag_values.
type FetchTagValuesInput struct {
	Label string `json:"label" jsonschema:"required,Label name"`
	Query string `json:"query,omitempty" jsonschema:"Query to list values for (default: the current query)"`
}

// FetchTagValuesOutput is the output for pyroscope_fetch_tag_values.
type FetchTagValuesOutput struct {
	Label  string   `json:"label"`
	Values []string `json:"values,omitempty"`
}

// ToolFetchSingleView renders the profile for the current selection.
func ToolFetchSingleView(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchSingleViewInput) (*sdkmcp.CallToolResult, FetchSingleViewOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchSingleViewInput) (*sdkmcp.CallToolResult, FetchSingleViewOutput, error) {
		if input.Refresh {
			d.Store.Dispatch(continuous.NewRefresh())
		}

		if _, err := d.Fetcher.FetchSingleView(ctx, d.Store); err != nil {
			return nil, FetchSingleViewOutput{}, WrapPyroscopeError(err)
		}

		st := d.Store.ContinuousState()
		out := FetchSingleViewOutput{
			Selection:  selectionOf(st),
			SingleView: singleViewSummaryOf(st.SingleView),
		}
		if out.SingleView.Status != continuous.StatusLoaded {
			// A newer fetch started while this one was in flight.
			out.Hints = append(out.Hints, "A newer render is in progress; call pyroscope_view_state to see its result.")
		} else if out.SingleView.TotalSamples == 0 {
			out.Hints = append(out.Hints, "No samples in range. Widen the time range or check the query.")
		}
		return nil, out, nil
	}
}

// ToolFetchTags lists the labels for a query.
func ToolFetchTags(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchTagsInput) (*sdkmcp.CallToolResult, FetchTagsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchTagsInput) (*sdkmcp.CallToolResult, FetchTagsOutput, error) {
		q := input.Query
		if q == "" {
			q = d.Store.ContinuousState().Query
		}

		if _, err := d.Fetcher.FetchTags(ctx, d.Store, q); err != nil {
			return nil, FetchTagsOutput{}, WrapPyroscopeError(err)
		}

		var out FetchTagsOutput
		if input.WithValues {
			if err := d.Fetcher.FetchAllTagValues(ctx, d.Store, q); err != nil {
				out.Errors = splitJoined(err)
			}
		}
		out.Tags = tagsSummaryOf(d.Store.ContinuousState().Tags)
		return nil, out, nil
	}
}

// ToolFetchTagValues lists the values of one label.
func ToolFetchTagValues(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchTagValuesInput) (*sdkmcp.CallToolResult, FetchTagValuesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchTagValuesInput) (*sdkmcp.CallToolResult, FetchTagValuesOutput, error) {
		if input.Label == "" {
			return nil, FetchTagValuesOutput{}, ErrInvalidInput("label is required")
		}
		q := input.Query
		if q == "" {
			q = d.Store.ContinuousState().Query
		}

		values, err := d.Fetcher.FetchTagValues(ctx, d.Store, input.Label, q)
		if err != nil {
			return nil, FetchTagValuesOutput{}, WrapPyroscopeError(err)
		}
		return nil, FetchTagValuesOutput{Label: input.Label, Values: values}, nil
	}
}

// splitJoined flattens an errors.Join result into messages.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
