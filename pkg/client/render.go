package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RenderSingle renders one profile for a time range and query.
func (c *Client) RenderSingle(ctx context.Context, params RenderParams) (*RenderOutput, error) {
	q := url.Values{}
	q.Set("from", params.From)
	q.Set("until", params.Until)
	q.Set("query", params.Query)
	if params.MaxNodes > 0 {
		q.Set("max-nodes", strconv.Itoa(params.MaxNodes))
	}
	q.Set("format", "json")

	var resp renderResponse
	if err := c.get(ctx, "/render", q, renderSchema, &resp); err != nil {
		return nil, fmt.Errorf("rendering %q: %w", params.Query, err)
	}

	return &RenderOutput{
		Timeline: resp.Timeline,
		Profile: Profile{
			Flamebearer: resp.Flamebearer,
			Metadata:    resp.Metadata,
		},
	}, nil
}
