package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/mcp/tools"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Resource URI scheme: pyroscope://
// Supported URIs:
//   pyroscope://state
//   pyroscope://profile
//   pyroscope://notifications
//   pyroscope://tags/{label}

const resourceScheme = "pyroscope://"

// registerResources registers resources and resource templates.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         resourceScheme + "state",
		Name:        "View State",
		Description: "The whole view state: selection, URL, fetch statuses and ui settings. Same content as pyroscope_view_state.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceState)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         resourceScheme + "profile",
		Name:        "Rendered Profile",
		Description: "The loaded timeline and flamebearer. High context cost - pyroscope_query_profile extracts just what you need. Only fetch for a full dump.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceProfile)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         resourceScheme + "notifications",
		Name:        "Notifications",
		Description: "Notification history including dismissed entries.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceNotifications)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: resourceScheme + "tags/{label}",
		Name:        "Label Values",
		Description: "Known values of one label. Populated by pyroscope_fetch_tags(with_values) or pyroscope_fetch_tag_values.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceTagValues)
}

func (s *Server) handleResourceState(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	_, out, err := tools.ToolViewState(s.deps)(ctx, nil, tools.ViewStateInput{})
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, out)
}

func (s *Server) handleResourceProfile(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	view := s.deps.Store.ContinuousState().SingleView
	timeline, profile, ok := continuous.ViewData(view)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	content := map[string]any{
		"status": view.Status(),
		"render": client.RenderOutput{Timeline: timeline, Profile: profile},
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceNotifications(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	_, out, err := tools.ToolNotifications(s.deps)(ctx, nil, tools.NotificationsInput{IncludeDismissed: true})
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, out)
}

func (s *Server) handleResourceTagValues(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	label := params["label"]
	tags := s.deps.Store.ContinuousState().Tags
	if tags == nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	values, ok := tags.Labels().Values(label)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	content := map[string]any{
		"label":  label,
		"values": values,
	}
	return toResourceResult(req.Params.URI, content)
}

// Helper functions

// parseResourceURI extracts parameters from a pyroscope:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + resourceScheme)
	}

	path := strings.TrimPrefix(uri, resourceScheme)
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "state", "profile", "notifications":
		if len(parts) > 1 {
			return nil, tools.ErrInvalidInput(fmt.Sprintf("%s URI takes no path parameters", resourceType))
		}
	case "tags":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("tags URI requires a label")
		}
		params["label"] = parts[1]
	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	params["type"] = resourceType
	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
