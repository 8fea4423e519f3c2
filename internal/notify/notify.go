// Package notify provides the process-wide channel for user-facing
// notifications raised by failed fetches.
package notify

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Notification severities.
const (
	TypeDanger  = "danger"
	TypeWarning = "warning"
	TypeInfo    = "info"
	TypeSuccess = "success"
)

// DefaultMax is the default number of notifications retained.
const DefaultMax = 100

// Notification is a user-facing message.
type Notification struct {
	ID        uint32    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Center records notifications and fans them out to subscribers.
// Dismissed notifications stay in history but leave the active set.
type Center struct {
	mu          sync.Mutex
	nextID      uint32
	max         int
	history     map[uint32]Notification
	active      *roaring.Bitmap
	subscribers map[int]chan Notification
	nextSub     int
	now         func() time.Time
}

// NewCenter creates a Center retaining at most limit notifications.
func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Center{
		nextID:      1,
		max:         limit,
		history:     make(map[uint32]Notification),
		active:      roaring.New(),
		subscribers: make(map[int]chan Notification),
		now:         time.Now,
	}
}

// Notify records n, assigning its ID and timestamp, and delivers it to every
// subscriber. Slow subscribers miss notifications rather than block.
func (c *Center) Notify(n Notification) Notification {
	c.mu.Lock()
	n.ID = c.nextID
	c.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}
	c.history[n.ID] = n
	c.active.Add(n.ID)
	c.evictLocked()

	// Sends are non-blocking; holding mu keeps cancel from closing ch mid-send.
	for _, ch := range c.subscribers {
		select {
		case ch <- n:
		default:
			slog.Debug("dropping notification for slow subscriber", slog.Uint64("id", uint64(n.ID)))
		}
	}
	c.mu.Unlock()

	slog.Info("notification raised",
		slog.Uint64("id", uint64(n.ID)),
		slog.String("type", n.Type),
		slog.String("title", n.Title),
		slog.String("message", n.Message),
	)
	return n
}

// evictLocked drops the oldest notifications beyond the retention limit.
func (c *Center) evictLocked() {
	overflow := len(c.history) - c.max
	if overflow <= 0 {
		return
	}
	ids := make([]uint32, 0, len(c.history))
	for id := range c.history {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids[:overflow] {
		delete(c.history, id)
		c.active.Remove(id)
	}
}

// Active returns undismissed notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, c.active.GetCardinality())
	it := c.active.Iterator()
	for it.HasNext() {
		if n, ok := c.history[it.Next()]; ok {
			out = append(out, n)
		}
	}
	return out
}

// All returns every retained notification, oldest first.
func (c *Center) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.history))
	for _, n := range c.history {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsActive reports whether id is retained and not dismissed.
func (c *Center) IsActive(id uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Contains(id)
}

// Dismiss removes ids from the active set. It returns how many were active.
func (c *Center) Dismiss(ids ...uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dismissed := 0
	for _, id := range ids {
		if c.active.CheckedRemove(id) {
			dismissed++
		}
	}
	return dismissed
}

// DismissAll clears the active set.
func (c *Center) DismissAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int(c.active.GetCardinality())
	c.active.Clear()
	return n
}

// Subscribe returns a channel receiving every future notification and a
// cancel function that closes it.
func (c *Center) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
