package feed

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/usestring/pyroscope-mcp/internal/notify"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPushInterval = 30 * time.Second
)

// Message kinds pushed over /ws.
const (
	KindState        = "state"
	KindNotification = "notification"
)

// Message is one websocket frame.
type Message struct {
	Kind         string               `json:"kind"`
	Snapshot     *Snapshot            `json:"snapshot,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	s.serveConnection(conn)
}

// serveConnection sends a snapshot right away and then one per store change.
// Changes that arrive while a write is in progress are coalesced.
func (s *Server) serveConnection(conn *websocket.Conn) {
	defer conn.Close()

	changed := make(chan struct{}, 1)
	unsubscribe := s.state.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var notes <-chan notify.Notification
	if s.notifications != nil {
		ch, cancel := s.notifications.Subscribe(16)
		defer cancel()
		notes = ch
	}

	if err := s.writeSnapshot(conn); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-changed:
			if err := s.writeSnapshot(conn); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writeSnapshot(conn); err != nil {
				return
			}
		case n, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			if err := writeMessage(conn, Message{Kind: KindNotification, Notification: &n}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	snap := s.snapshot()
	return writeMessage(conn, Message{Kind: KindState, Snapshot: &snap})
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
