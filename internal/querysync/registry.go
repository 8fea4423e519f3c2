// Package querysync keeps selected store fields and the query string of a
// Location in agreement.
//
// At Start the location is authoritative: every registered parameter is
// dispatched from the URL and the URL is then normalized in place. After
// that, store changes push new history entries and location changes are
// dispatched back into the store. A parameter equal to its default is left
// out of the URL, and a parameter absent from the URL means its default.
package querysync

import (
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/usestring/pyroscope-mcp/internal/action"
)

// ErrStarted is returned by Start on a registry that is already running.
var ErrStarted = errors.New("querysync: registry already started")

// Store is the state container a Registry is bound to.
type Store[S any] interface {
	action.Dispatcher
	State() S
	// Subscribe registers fn to be called after every dispatch.
	Subscribe(fn func()) (unsubscribe func())
}

// Param binds one query parameter to a store field.
type Param[S any] struct {
	Name    string
	Default string
	// Selector returns the field's current value in URL form.
	Selector func(S) string
	// Action builds the action that sets the field from a URL value.
	Action func(value string) action.Action
}

// Registry synchronizes a set of Params between a Store and a Location.
//
// Reconciliation is serialized by syncMu. A change that arrives while
// another reconciliation holds it, whether from the registry's own dispatches
// or from another goroutine, is recorded in storeDirty or inbound and picked
// up by the holder before it returns.
type Registry[S any] struct {
	params []Param[S]

	mu          sync.Mutex
	store       Store[S]
	loc         Location
	unsubscribe func()
	unlisten    func()
	// written is the URL of the registry's last location write, consumed by
	// the listener call that write triggers.
	written string

	syncMu     sync.Mutex
	storeDirty atomic.Bool
	inbound    atomic.Pointer[url.URL]
}

// New creates a Registry for params.
func New[S any](params ...Param[S]) *Registry[S] {
	return &Registry[S]{params: params}
}

// Params returns the registered parameters.
func (r *Registry[S]) Params() []Param[S] {
	out := make([]Param[S], len(r.params))
	copy(out, r.params)
	return out
}

// Start reconciles store and loc, then keeps them synchronized until Stop.
func (r *Registry[S]) Start(store Store[S], loc Location) error {
	r.mu.Lock()
	if r.store != nil {
		r.mu.Unlock()
		return ErrStarted
	}
	r.store = store
	r.loc = loc
	r.mu.Unlock()

	r.syncMu.Lock()
	r.applyLocation(loc.Current())
	r.syncMu.Unlock()

	unsubscribe := store.Subscribe(r.onStoreChange)
	unlisten := loc.Listen(r.onLocationChange)

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.unlisten = unlisten
	r.written = ""
	r.mu.Unlock()

	slog.Debug("query sync started", slog.Int("params", len(r.params)))
	return nil
}

// Stop detaches the registry from the store and the location. It is safe to
// call more than once.
func (r *Registry[S]) Stop() {
	r.mu.Lock()
	unsubscribe, unlisten := r.unsubscribe, r.unlisten
	r.store, r.loc = nil, nil
	r.unsubscribe, r.unlisten = nil, nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if unlisten != nil {
		unlisten()
	}
}

// Effective returns the value of p in query: the parameter when present,
// its default otherwise.
func (p Param[S]) Effective(query url.Values) string {
	if query.Has(p.Name) {
		return query.Get(p.Name)
	}
	return p.Default
}

func (r *Registry[S]) onStoreChange() {
	r.storeDirty.Store(true)
	r.reconcile()
}

func (r *Registry[S]) onLocationChange(u url.URL) {
	if r.ownWrite(u) {
		return
	}
	r.inbound.Store(&u)
	r.reconcile()
}

// reconcile drains pending location and store changes. It returns at once
// when another call holds syncMu; that call sees the recorded change after
// it finishes its own.
func (r *Registry[S]) reconcile() {
	for {
		if !r.syncMu.TryLock() {
			return
		}
		if u := r.inbound.Swap(nil); u != nil {
			r.applyLocation(*u)
		} else if r.storeDirty.Swap(false) {
			r.writeLocation(false)
		}
		r.syncMu.Unlock()

		if r.inbound.Load() == nil && !r.storeDirty.Load() {
			return
		}
	}
}

// applyLocation dispatches the action of every parameter whose URL value
// differs from the store, then normalizes the current entry in place: the
// store may not accept a URL value as given. Callers hold syncMu.
func (r *Registry[S]) applyLocation(u url.URL) {
	store := r.bound()
	if store == nil {
		return
	}

	query := u.Query()
	state := store.State()
	for _, p := range r.params {
		value := p.Effective(query)
		if p.Selector(state) == value {
			continue
		}
		store.Dispatch(p.Action(value))
	}

	// Our own dispatches marked the store dirty. Whatever they changed, and
	// anything another goroutine changed meanwhile, is written by the
	// Replace below.
	r.storeDirty.Store(false)
	r.writeLocation(true)
}

// writeLocation rewrites the query string from the store. Parameters not
// registered here are kept as they are. Nothing is written when the query
// string would not change.
func (r *Registry[S]) writeLocation(replace bool) {
	r.mu.Lock()
	store, loc := r.store, r.loc
	r.mu.Unlock()
	if store == nil || loc == nil {
		return
	}

	// Callers hold syncMu.
	cur := loc.Current()
	query := cur.Query()
	before := query.Encode()
	state := store.State()
	for _, p := range r.params {
		value := p.Selector(state)
		if value == p.Default {
			query.Del(p.Name)
		} else {
			query.Set(p.Name, value)
		}
	}

	encoded := query.Encode()
	if encoded == before {
		return
	}
	next := cur
	next.RawQuery = encoded

	r.mu.Lock()
	r.written = next.String()
	r.mu.Unlock()
	if replace {
		loc.Replace(next)
	} else {
		loc.Push(next)
	}
}

func (r *Registry[S]) bound() Store[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store
}

// ownWrite reports whether u is the location the registry just wrote.
func (r *Registry[S]) ownWrite(u url.URL) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.written == "" || r.written != u.String() {
		return false
	}
	r.written = ""
	return true
}
