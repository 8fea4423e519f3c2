// Package tools contains MCP tool implementations for driving the Pyroscope
// single view.
package tools

import (
	"encoding/json"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/ui"
)

// MIME type constant.
const MimeJSON = "application/json"

// MakeJSONToolResult creates a CallToolResult with JSON text content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: string(b)},
		},
	}, nil
}

// Selection is the query state shared by every view.
type Selection struct {
	From         string `json:"from"`
	Until        string `json:"until"`
	LeftFrom     string `json:"left_from"`
	LeftUntil    string `json:"left_until"`
	RightFrom    string `json:"right_from"`
	RightUntil   string `json:"right_until"`
	Query        string `json:"query"`
	MaxNodes     int    `json:"max_nodes"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SingleViewSummary describes the rendered profile without its payload.
// Use pyroscope_query_profile to look inside.
type SingleViewSummary struct {
	Status        string `json:"status"`
	HasData       bool   `json:"has_data"`
	StartTime     int64  `json:"start_time,omitempty"`
	DurationDelta int64  `json:"duration_delta,omitempty"`
	SampleCount   int    `json:"sample_count,omitempty"`
	TotalSamples  uint64 `json:"total_samples,omitempty"`
}

// TagsSummary describes the label list and the values learned so far.
type TagsSummary struct {
	Status string              `json:"status"`
	Labels []string            `json:"labels,omitempty"`
	Values map[string][]string `json:"values,omitempty"`
}

// UISettings is the persisted ui slice.
type UISettings struct {
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
	ColorMode        string `json:"color_mode"`
	TimeOffset       int    `json:"time_offset_minutes"`
}

// NotificationInfo is a notification as shown to the agent.
type NotificationInfo struct {
	ID        uint32 `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	Active    bool   `json:"active"`
}

func selectionOf(s continuous.State) Selection {
	return Selection{
		From:         s.From.String(),
		Until:        s.Until.String(),
		LeftFrom:     s.LeftFrom.String(),
		LeftUntil:    s.LeftUntil.String(),
		RightFrom:    s.RightFrom.String(),
		RightUntil:   s.RightUntil.String(),
		Query:        s.Query,
		MaxNodes:     s.MaxNodes,
		RefreshToken: s.RefreshToken,
	}
}

func singleViewSummaryOf(v continuous.SingleView) SingleViewSummary {
	out := SingleViewSummary{Status: continuous.StatusPristine}
	if v != nil {
		out.Status = v.Status()
	}
	timeline, _, ok := continuous.ViewData(v)
	if !ok {
		return out
	}
	out.HasData = true
	out.StartTime = timeline.StartTime
	out.DurationDelta = timeline.DurationDelta
	out.SampleCount = len(timeline.Samples)
	for _, n := range timeline.Samples {
		out.TotalSamples += n
	}
	return out
}

func tagsSummaryOf(t continuous.Tags) TagsSummary {
	if t == nil {
		return TagsSummary{Status: continuous.StatusPristine}
	}
	set := t.Labels()
	out := TagsSummary{Status: t.Status()}
	if set.Len() > 0 {
		out.Labels = set.Names()
		out.Values = set.Map()
	}
	return out
}

func uiSettingsOf(s ui.State) UISettings {
	return UISettings{
		SidebarCollapsed: s.SidebarCollapsed,
		ColorMode:        s.ColorMode,
		TimeOffset:       s.Time.Offset,
	}
}

func notificationInfoOf(n notify.Notification, active bool) NotificationInfo {
	return NotificationInfo{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		Active:    active,
	}
}
