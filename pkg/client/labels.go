package client

import (
	"context"
	"fmt"
	"net/url"
)

// ListLabels retrieves the label names known for the given query.
func (c *Client) ListLabels(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("query", query)

	var labels []string
	if err := c.get(ctx, "/labels", q, labelsSchema, &labels); err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return labels, nil
}

// ListLabelValues retrieves the known values of label for the given query.
func (c *Client) ListLabelValues(ctx context.Context, label, query string) ([]string, error) {
	q := url.Values{}
	q.Set("label", label)
	q.Set("query", query)

	var values []string
	if err := c.get(ctx, "/label-values", q, labelValuesSchema, &values); err != nil {
		return nil, fmt.Errorf("listing values for label %q: %w", label, err)
	}
	return values, nil
}
