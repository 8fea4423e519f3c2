package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/store"
)

type wireSnapshot struct {
	URL   string `json:"url"`
	State struct {
		Continuous struct {
			Query string `json:"query"`
		} `json:"continuous"`
		UI struct {
			ColorMode string `json:"colorMode"`
		} `json:"ui"`
	} `json:"state"`
}

type wireMessage struct {
	Kind         string               `json:"kind"`
	Snapshot     *wireSnapshot        `json:"snapshot"`
	Notification *notify.Notification `json:"notification"`
}

func newTestFeed(t *testing.T) (*httptest.Server, *store.Store, *notify.Center) {
	t.Helper()

	history, err := querysync.NewMemoryHistory("/")
	require.NoError(t, err)
	st, err := store.New(context.Background(), store.WithLocation(history))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	center := notify.NewCenter(10)
	srv := New("127.0.0.1:0", st, WithNotifications(center), WithLocation(history))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st, center
}

func TestHandleState(t *testing.T) {
	ts, st, _ := newTestFeed(t)
	st.Dispatch(continuous.SetQuery{Value: "app.cpu{}"})

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap wireSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "app.cpu{}", snap.State.Continuous.Query)
	assert.Equal(t, "dark", snap.State.UI.ColorMode)
	assert.Equal(t, "/?query=app.cpu%7B%7D", snap.URL)
}

func TestHandleState_MethodNotAllowed(t *testing.T) {
	ts, _, _ := newTestFeed(t)

	resp, err := http.Post(ts.URL+"/api/state", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleNotifications(t *testing.T) {
	ts, _, center := newTestFeed(t)
	first := center.Notify(notify.Notification{Type: notify.TypeDanger, Title: "Failed", Message: "Failed to load tags"})
	center.Notify(notify.Notification{Type: notify.TypeDanger, Title: "Failed", Message: "Failed to load singleView"})
	center.Dismiss(first.ID)

	fetch := func(path string) []NotificationEntry {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []NotificationEntry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	all := fetch("/api/notifications")
	require.Len(t, all, 2)
	assert.False(t, all[0].Active)
	assert.True(t, all[1].Active)

	active := fetch("/api/notifications?active=true")
	require.Len(t, active, 1)
	assert.Equal(t, "Failed to load singleView", active[0].Message)
}

func TestHandleNotifications_Disabled(t *testing.T) {
	st, err := store.New(context.Background())
	require.NoError(t, err)
	defer st.Close()

	ts := httptest.NewServer(New("", st).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/notifications")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wireMessage) bool) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocket_PushesChanges(t *testing.T) {
	ts, st, center := newTestFeed(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUntil(t, conn, func(m wireMessage) bool { return true })
	assert.Equal(t, KindState, first.Kind)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, "", first.Snapshot.State.Continuous.Query)

	st.Dispatch(continuous.SetQuery{Value: "app.mem{}"})
	msg := readUntil(t, conn, func(m wireMessage) bool {
		return m.Kind == KindState && m.Snapshot != nil && m.Snapshot.State.Continuous.Query == "app.mem{}"
	})
	assert.Equal(t, "/?query=app.mem%7B%7D", msg.Snapshot.URL)

	center.Notify(notify.Notification{Type: notify.TypeDanger, Title: "Failed", Message: "Failed to load tags"})
	msg = readUntil(t, conn, func(m wireMessage) bool { return m.Kind == KindNotification })
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "Failed to load tags", msg.Notification.Message)
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	ts, _, _ := newTestFeed(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
