package querysync

import (
	"fmt"
	"net/url"
	"sync"
)

// Location is an address bar: the current URL plus the means to change it
// and to observe changes.
type Location interface {
	Current() url.URL
	Push(u url.URL)
	Replace(u url.URL)
	// Listen registers fn to be called with the new URL after every change,
	// including those made through Push and Replace. The returned func
	// removes fn.
	Listen(fn func(url.URL)) (cancel func())
}

// MemoryHistory is a Location backed by an in-memory stack of entries, with
// browser-like back and forward navigation.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []url.URL
	index     int
	listeners map[int]func(url.URL)
	nextID    int
}

var _ Location = (*MemoryHistory)(nil)

// NewMemoryHistory creates a history whose only entry is initial. An empty
// initial yields "/".
func NewMemoryHistory(initial string) (*MemoryHistory, error) {
	if initial == "" {
		initial = "/"
	}
	u, err := url.Parse(initial)
	if err != nil {
		return nil, fmt.Errorf("parse initial url: %w", err)
	}
	return &MemoryHistory{
		entries:   []url.URL{*u},
		listeners: make(map[int]func(url.URL)),
	}, nil
}

// Current returns the URL of the current entry.
func (h *MemoryHistory) Current() url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push adds u after the current entry, discarding any forward entries.
func (h *MemoryHistory) Push(u url.URL) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], u)
	h.index++
	h.mu.Unlock()
	h.notify(u)
}

// Replace overwrites the current entry.
func (h *MemoryHistory) Replace(u url.URL) {
	h.mu.Lock()
	h.entries[h.index] = u
	h.mu.Unlock()
	h.notify(u)
}

// Navigate parses rawURL and pushes it, as if the user had typed it into the
// address bar. A relative rawURL is resolved against the current entry.
func (h *MemoryHistory) Navigate(rawURL string) (url.URL, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return url.URL{}, fmt.Errorf("parse url: %w", err)
	}
	cur := h.Current()
	u := *cur.ResolveReference(ref)
	h.Push(u)
	return u, nil
}

// Back moves to the previous entry. It reports false when there is none.
func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry. It reports false when there is none.
func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	u := h.entries[next]
	h.mu.Unlock()
	h.notify(u)
	return true
}

// Entries returns a copy of the stack and the index of the current entry.
func (h *MemoryHistory) Entries() ([]url.URL, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]url.URL, len(h.entries))
	copy(out, h.entries)
	return out, h.index
}

// Listen implements Location.
func (h *MemoryHistory) Listen(fn func(url.URL)) (cancel func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// notify calls the listeners on the caller's goroutine, without holding mu,
// so a listener may read or change the history.
func (h *MemoryHistory) notify(u url.URL) {
	h.mu.Lock()
	fns := make([]func(url.URL), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
