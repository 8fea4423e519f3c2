// Package feed serves the view state over HTTP and pushes every change to
// websocket clients, so a human can follow what the agent is doing.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/store"
)

// StateSource is the store as seen by the feed.
type StateSource interface {
	State() store.RootState
	Subscribe(fn func()) (unsubscribe func())
}

// Notifications is the notification center as seen by the feed.
type Notifications interface {
	All() []notify.Notification
	IsActive(id uint32) bool
	Subscribe(buffer int) (<-chan notify.Notification, func())
}

// URLSource reports the current address.
type URLSource interface {
	Current() url.URL
}

// Snapshot is the payload of GET /api/state and of every "state" message.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	URL         string          `json:"url,omitempty"`
	State       store.RootState `json:"state"`
}

// NotificationEntry is a notification with its dismissal status.
type NotificationEntry struct {
	notify.Notification
	Active bool `json:"active"`
}

// Server serves the feed.
type Server struct {
	httpServer    *http.Server
	state         StateSource
	notifications Notifications
	location      URLSource
}

// Option configures a Server.
type Option func(*Server)

// WithNotifications enables /api/notifications and notification messages.
func WithNotifications(n Notifications) Option {
	return func(s *Server) {
		s.notifications = n
	}
}

// WithLocation includes the current URL in snapshots.
func WithLocation(loc URLSource) Option {
	return func(s *Server) {
		s.location = loc
	}
}

// New creates a feed server listening on addr.
func New(addr string, state StateSource, opts ...Option) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		state: state,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes(mux)
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	slog.Info("feed listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down. Open websocket connections are
// not tracked by http.Server and end when their clients go away.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.notifications == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "notifications are not enabled"})
		return
	}
	activeOnly := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("active")), "true")
	writeJSON(w, http.StatusOK, s.notificationEntries(activeOnly))
}

func (s *Server) snapshot() Snapshot {
	snap := Snapshot{
		GeneratedAt: time.Now().UTC(),
		State:       s.state.State(),
	}
	if s.location != nil {
		u := s.location.Current()
		snap.URL = u.String()
	}
	return snap
}

func (s *Server) notificationEntries(activeOnly bool) []NotificationEntry {
	all := s.notifications.All()
	out := make([]NotificationEntry, 0, len(all))
	for _, n := range all {
		active := s.notifications.IsActive(n.ID)
		if activeOnly && !active {
			continue
		}
		out = append(out, NotificationEntry{Notification: n, Active: active})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
