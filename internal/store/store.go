// Package store composes the application state: the continuous and ui
// slices, the dispatch middleware chain, persistence of the ui slice and
// synchronization of the selection with the address bar.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/usestring/pyroscope-mcp/internal/action"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
	"github.com/usestring/pyroscope-mcp/internal/storage"
	"github.com/usestring/pyroscope-mcp/internal/ui"
)

// uiKey is the key of the ui slice in the Persister.
const uiKey = "ui"

const saveTimeout = 5 * time.Second

// RootState is the whole application state.
type RootState struct {
	Continuous continuous.State `json:"continuous"`
	UI         ui.State         `json:"ui"`
}

// Persister stores versioned slices.
type Persister interface {
	Load(ctx context.Context, key string) (storage.Slice, error)
	Save(ctx context.Context, key string, s storage.Slice) error
}

// Store holds the RootState. All changes go through Dispatch, which runs the
// middleware chain and then the reducers under a single writer lock.
type Store struct {
	mu    sync.RWMutex
	state RootState

	dispatch DispatchFunc

	lmu       sync.Mutex
	listeners map[int]func()
	nextID    int

	persister Persister
	saveMu    sync.Mutex

	location querysync.Location
	sync     *querysync.Registry[RootState]

	middlewares []Middleware
}

// Option configures a Store.
type Option func(*Store)

// WithPersister persists the ui slice in p and rehydrates it on New.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithLocation synchronizes the selection with loc's query string.
func WithLocation(loc querysync.Location) Option {
	return func(s *Store) {
		s.location = loc
	}
}

// WithMiddleware appends middlewares after the default ones.
func WithMiddleware(m ...Middleware) Option {
	return func(s *Store) {
		s.middlewares = append(s.middlewares, m...)
	}
}

// New creates a Store. With a persister the stored ui slice is rehydrated;
// with a location the selection is first read from it.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	s := &Store{
		state: RootState{
			Continuous: continuous.InitialState(),
			UI:         ui.InitialState(),
		},
		listeners:   make(map[int]func()),
		middlewares: []Middleware{SerializableCheckMiddleware, LogErrorMiddleware},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatch = chain(s, s.middlewares, s.reduce)

	if s.persister != nil {
		if err := s.rehydrate(ctx); err != nil {
			return nil, err
		}
	}

	if s.location != nil {
		s.sync = querysync.New(QueryParams()...)
		if err := s.sync.Start(s, s.location); err != nil {
			return nil, fmt.Errorf("start query sync: %w", err)
		}
	}
	return s, nil
}

// Dispatch applies a.
func (s *Store) Dispatch(a action.Action) {
	s.dispatch(a)
}

// State returns a snapshot of the state.
func (s *Store) State() RootState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ContinuousState returns a snapshot of the continuous slice.
func (s *Store) ContinuousState() continuous.State {
	return SelectContinuous(s.State())
}

// SelectContinuous returns the continuous slice of s.
func SelectContinuous(s RootState) continuous.State {
	return s.Continuous
}

// Subscribe registers fn to run after every dispatch. fn runs on the
// dispatching goroutine, after the state has been updated.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// Flush saves the ui slice now.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.save(ctx)
}

// Close stops query synchronization and flushes the ui slice.
func (s *Store) Close() error {
	if s.sync != nil {
		s.sync.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.Flush(ctx)
}

// reduce is the innermost DispatchFunc.
func (s *Store) reduce(a action.Action) {
	s.mu.Lock()
	prev := s.state
	s.state = RootState{
		Continuous: continuous.Reduce(prev.Continuous, a),
		UI:         ui.Reduce(prev.UI, a),
	}
	next := s.state
	s.mu.Unlock()

	if s.persister != nil && next.UI != prev.UI && a.Type() != ui.TypeRehydrate {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.save(ctx); err != nil {
			slog.Warn("failed to persist ui state", slog.String("error", err.Error()))
		}
		cancel()
	}

	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) rehydrate(ctx context.Context) error {
	stored, err := s.persister.Load(ctx, uiKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ui state: %w", err)
	}

	st, err := ui.Migrate(stored.Version, stored.Data)
	if err != nil {
		// Preferences that cannot be migrated are dropped.
		slog.Warn("discarding stored ui state",
			slog.Int("version", stored.Version),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.Dispatch(ui.Rehydrate{State: st})
	if stored.Version != ui.Version {
		return s.Flush(ctx)
	}
	return nil
}

// save writes the ui slice as of the time saveMu is acquired, so concurrent
// saves never leave an older slice behind.
func (s *Store) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	data, err := json.Marshal(s.State().UI)
	if err != nil {
		return fmt.Errorf("encode ui state: %w", err)
	}
	return s.persister.Save(ctx, uiKey, storage.Slice{Version: ui.Version, Data: data})
}
