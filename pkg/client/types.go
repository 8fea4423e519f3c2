package client

import (
	"fmt"
	"strings"
)

// Timeline is the sample-count series shown above a rendered profile.
type Timeline struct {
	StartTime     int64    `json:"startTime"`
	Samples       []uint64 `json:"samples"`
	DurationDelta int64    `json:"durationDelta"`
}

// Profile is a rendered profile. Its contents are opaque to this package
// beyond the presence of a flamebearer.
type Profile struct {
	Flamebearer map[string]any `json:"flamebearer"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RenderOutput is the result of rendering a single view.
type RenderOutput struct {
	Timeline Timeline `json:"timeline"`
	Profile  Profile  `json:"profile"`
}

// RenderParams selects what RenderSingle renders.
type RenderParams struct {
	From     string
	Until    string
	Query    string
	MaxNodes int
}

// renderResponse is the wire shape of GET /render?format=json.
type renderResponse struct {
	Timeline    Timeline       `json:"timeline"`
	Flamebearer map[string]any `json:"flamebearer"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// APIError represents an error response from the Pyroscope API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pyroscope API error %d: %s", e.StatusCode, e.Message)
}

// ValidationError is returned when a response body does not match the
// expected schema.
type ValidationError struct {
	Resource string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s response: %s", e.Resource, strings.Join(e.Problems, "; "))
}

// errorResponse is the JSON structure for API errors.
type errorResponse struct {
	Error string `json:"error"`
}
