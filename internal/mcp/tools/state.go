package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/action"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/ui"
	"github.com/usestring/pyroscope-mcp/pkg/attime"
)

// ViewStateInput is the input for pyroscope_view_state.
type ViewStateInput struct{}

// ViewStateOutput is the output for pyroscope_view_state.
type ViewStateOutput struct {
	URL                 string            `json:"url"`
	Selection           Selection         `json:"selection"`
	SingleView          SingleViewSummary `json:"single_view"`
	Tags                TagsSummary       `json:"tags"`
	UI                  UISettings        `json:"ui"`
	ActiveNotifications int               `json:"active_notifications"`
}

// SelectionOutput is returned by the tools that change the selection.
type SelectionOutput struct {
	URL       string    `json:"url"`
	Selection Selection `json:"selection"`
}

// SetTimeRangeInput is the input for pyroscope_set_time_range.
type SetTimeRangeInput struct {
	From       string `json:"from,omitempty" jsonschema:"Start of the primary range (e.g. now-1h, unix seconds, RFC3339)"`
	Until      string `json:"until,omitempty" jsonschema:"End of the primary range"`
	LeftFrom   string `json:"left_from,omitempty" jsonschema:"Start of the left comparison range"`
	LeftUntil  string `json:"left_until,omitempty" jsonschema:"End of the left comparison range"`
	RightFrom  string `json:"right_from,omitempty" jsonschema:"Start of the right comparison range"`
	RightUntil string `json:"right_until,omitempty" jsonschema:"End of the right comparison range"`
}

// SetQueryInput is the input for pyroscope_set_query.
type SetQueryInput struct {
	Query    string `json:"query" jsonschema:"Profile query, e.g. app.cpu{env=\"prod\"}. Empty clears it."`
	MaxNodes int    `json:"max_nodes,omitempty" jsonschema:"Maximum flamegraph nodes (default: unchanged)"`
}

// NavigateInput is the input for pyroscope_navigate.
type NavigateInput struct {
	URL       string `json:"url,omitempty" jsonschema:"URL or query string to open, e.g. ?from=now-6h&query=app.cpu{}"`
	Direction string `json:"direction,omitempty" jsonschema:"Move through history instead: back or forward"`
}

// NavigateOutput is the output for pyroscope_navigate.
type NavigateOutput struct {
	URL       string    `json:"url"`
	Moved     bool      `json:"moved"`
	Selection Selection `json:"selection"`
}

// HistoryInput is the input for pyroscope_history.
type HistoryInput struct{}

// HistoryOutput is the output for pyroscope_history.
type HistoryOutput struct {
	Entries []string `json:"entries,omitempty"`
	Index   int      `json:"index"`
}

// UISettingsInput is the input for pyroscope_ui_settings. Omitted fields are
// left unchanged.
type UISettingsInput struct {
	SidebarCollapsed *bool  `json:"sidebar_collapsed,omitempty" jsonschema:"Collapse or expand the sidebar"`
	ColorMode        string `json:"color_mode,omitempty" jsonschema:"dark or light"`
}

func (d *Deps) currentURL() string {
	if d.History == nil {
		return ""
	}
	u := d.History.Current()
	return u.String()
}

func (d *Deps) selectionOutput() SelectionOutput {
	return SelectionOutput{
		URL:       d.currentURL(),
		Selection: selectionOf(d.Store.ContinuousState()),
	}
}

// ToolViewState returns the whole view state.
func ToolViewState(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ViewStateInput) (*sdkmcp.CallToolResult, ViewStateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ViewStateInput) (*sdkmcp.CallToolResult, ViewStateOutput, error) {
		st := d.Store.State()
		out := ViewStateOutput{
			URL:        d.currentURL(),
			Selection:  selectionOf(st.Continuous),
			SingleView: singleViewSummaryOf(st.Continuous.SingleView),
			Tags:       tagsSummaryOf(st.Continuous.Tags),
			UI:         uiSettingsOf(st.UI),
		}
		if d.Notify != nil {
			out.ActiveNotifications = len(d.Notify.Active())
		}
		return nil, out, nil
	}
}

// ToolSetTimeRange changes any of the time bounds. Setting both from and
// until updates the primary range in one step.
func ToolSetTimeRange(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetTimeRangeInput) (*sdkmcp.CallToolResult, SelectionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetTimeRangeInput) (*sdkmcp.CallToolResult, SelectionOutput, error) {
		fields := []struct {
			name  string
			value string
			set   func(string) action.Action
		}{
			{"left_from", input.LeftFrom, func(v string) action.Action { return continuous.SetLeftFrom{Value: v} }},
			{"left_until", input.LeftUntil, func(v string) action.Action { return continuous.SetLeftUntil{Value: v} }},
			{"right_from", input.RightFrom, func(v string) action.Action { return continuous.SetRightFrom{Value: v} }},
			{"right_until", input.RightUntil, func(v string) action.Action { return continuous.SetRightUntil{Value: v} }},
			{"from", input.From, func(v string) action.Action { return continuous.SetFrom{Value: v} }},
			{"until", input.Until, func(v string) action.Action { return continuous.SetUntil{Value: v} }},
		}

		var pending []action.Action
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			if _, err := attime.Parse(f.value); err != nil {
				return nil, SelectionOutput{}, ErrInvalidInput(fmt.Sprintf("%s: %v", f.name, err))
			}
			if (f.name == "from" || f.name == "until") && input.From != "" && input.Until != "" {
				continue
			}
			pending = append(pending, f.set(f.value))
		}
		if input.From != "" && input.Until != "" {
			pending = append(pending, continuous.SetDateRange{From: input.From, Until: input.Until})
		}
		if len(pending) == 0 {
			return nil, SelectionOutput{}, ErrInvalidInput("at least one time bound is required")
		}

		for _, a := range pending {
			d.Store.Dispatch(a)
		}
		return nil, d.selectionOutput(), nil
	}
}

// ToolSetQuery changes the query and optionally the node limit.
func ToolSetQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetQueryInput) (*sdkmcp.CallToolResult, SelectionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetQueryInput) (*sdkmcp.CallToolResult, SelectionOutput, error) {
		if input.MaxNodes < 0 {
			return nil, SelectionOutput{}, ErrInvalidInput("max_nodes must be positive")
		}

		d.Store.Dispatch(continuous.SetQuery{Value: input.Query})
		if input.MaxNodes > 0 {
			d.Store.Dispatch(continuous.SetMaxNodes{Value: fmt.Sprint(input.MaxNodes)})
		}
		return nil, d.selectionOutput(), nil
	}
}

// ToolNavigate opens a URL or moves through history. The selection follows
// the address bar.
func ToolNavigate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input NavigateInput) (*sdkmcp.CallToolResult, NavigateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input NavigateInput) (*sdkmcp.CallToolResult, NavigateOutput, error) {
		if (input.URL == "") == (input.Direction == "") {
			return nil, NavigateOutput{}, ErrInvalidInput("exactly one of url or direction is required")
		}

		moved := true
		switch input.Direction {
		case "":
			if _, err := d.History.Navigate(input.URL); err != nil {
				return nil, NavigateOutput{}, ErrInvalidInput(err.Error())
			}
		case "back":
			moved = d.History.Back()
		case "forward":
			moved = d.History.Forward()
		default:
			return nil, NavigateOutput{}, ErrInvalidInput("direction must be 'back' or 'forward'")
		}

		return nil, NavigateOutput{
			URL:       d.currentURL(),
			Moved:     moved,
			Selection: selectionOf(d.Store.ContinuousState()),
		}, nil
	}
}

// ToolHistory lists the address bar history.
func ToolHistory(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
		entries, index := d.History.Entries()
		out := HistoryOutput{
			Entries: make([]string, len(entries)),
			Index:   index,
		}
		for i, u := range entries {
			out.Entries[i] = u.String()
		}
		return nil, out, nil
	}
}

// ToolUISettings reads or changes the persisted display preferences.
func ToolUISettings(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UISettingsInput) (*sdkmcp.CallToolResult, UISettings, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UISettingsInput) (*sdkmcp.CallToolResult, UISettings, error) {
		if input.ColorMode != "" && !ui.ValidColorMode(input.ColorMode) {
			return nil, UISettings{}, ErrInvalidInput("color_mode must be 'dark' or 'light'")
		}

		if input.SidebarCollapsed != nil {
			if *input.SidebarCollapsed {
				d.Store.Dispatch(ui.CollapseSidebar{})
			} else {
				d.Store.Dispatch(ui.UncollapseSidebar{})
			}
		}
		if input.ColorMode != "" {
			d.Store.Dispatch(ui.SetColorMode{Mode: input.ColorMode})
		}
		if err := d.Store.Flush(ctx); err != nil {
			return nil, UISettings{}, fmt.Errorf("saving ui settings: %w", err)
		}

		return nil, uiSettingsOf(d.Store.State().UI), nil
	}
}
