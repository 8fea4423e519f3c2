package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NotificationsInput is the input for pyroscope_notifications.
type NotificationsInput struct {
	Dismiss          []uint32 `json:"dismiss,omitempty" jsonschema:"Notification ids to dismiss"`
	DismissAll       bool     `json:"dismiss_all,omitempty" jsonschema:"Dismiss every active notification"`
	IncludeDismissed bool     `json:"include_dismissed,omitempty" jsonschema:"Also list dismissed notifications still in history"`
}

// NotificationsOutput is the output for pyroscope_notifications.
type NotificationsOutput struct {
	Notifications []NotificationInfo `json:"notifications,omitempty"`
	ActiveCount   int                `json:"active_count"`
	Dismissed     int                `json:"dismissed"`
}

// ToolNotifications lists failure notifications raised by fetches and
// optionally dismisses them.
func ToolNotifications(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input NotificationsInput) (*sdkmcp.CallToolResult, NotificationsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input NotificationsInput) (*sdkmcp.CallToolResult, NotificationsOutput, error) {
		var out NotificationsOutput
		if input.DismissAll {
			out.Dismissed = d.Notify.DismissAll()
		} else if len(input.Dismiss) > 0 {
			out.Dismissed = d.Notify.Dismiss(input.Dismiss...)
		}

		if input.IncludeDismissed {
			for _, n := range d.Notify.All() {
				out.Notifications = append(out.Notifications, notificationInfoOf(n, d.Notify.IsActive(n.ID)))
			}
		} else {
			for _, n := range d.Notify.Active() {
				out.Notifications = append(out.Notifications, notificationInfoOf(n, true))
			}
		}
		out.ActiveCount = len(d.Notify.Active())
		return nil, out, nil
	}
}
