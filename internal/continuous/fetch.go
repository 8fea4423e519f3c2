package continuous

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/pyroscope-mcp/internal/action"
	"github.com/usestring/pyroscope-mcp/internal/cache"
	"github.com/usestring/pyroscope-mcp/internal/notify"
	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Failure messages shown to the user.
const (
	MsgSingleViewFailed = "Failed to load singleView"
	MsgTagsFailed       = "Failed to load tags"
	MsgTagValuesFailed  = "Failed to load tag values"
)

// API is the rendering and label-listing service.
type API interface {
	RenderSingle(ctx context.Context, params client.RenderParams) (*client.RenderOutput, error)
	ListLabels(ctx context.Context, query string) ([]string, error)
	ListLabelValues(ctx context.Context, label, query string) ([]string, error)
}

// Notifier receives user-facing failure notifications.
type Notifier interface {
	Notify(n notify.Notification) notify.Notification
}

// Store is what the Fetcher needs from the state container.
type Store interface {
	action.Dispatcher
	ContinuousState() State
}

// Fetcher mediates between the API and the store. It holds no state of its
// own beyond request ids: every outcome is dispatched as an action.
type Fetcher struct {
	api      API
	notifier Notifier
	cache    *cache.LabelValuesCache
	workers  int

	seq    atomic.Uint64
	values singleflight.Group
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLabelValuesCache caches successful label values lookups.
func WithLabelValuesCache(c *cache.LabelValuesCache) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
	}
}

// WithWorkers bounds the concurrency of FetchAllTagValues.
func WithWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(api API, notifier Notifier, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		api:      api,
		notifier: notifier,
		workers:  4,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// nextID issues a request id. Ids start at 1 so they never match the zero
// fence of a fresh state by accident.
func (f *Fetcher) nextID() uint64 {
	return f.seq.Add(1)
}

// fail raises the failure notification for one attempt.
func (f *Fetcher) fail(message string) {
	if f.notifier == nil {
		return
	}
	f.notifier.Notify(notify.Notification{
		Type:    notify.TypeDanger,
		Title:   "Failed",
		Message: message,
	})
}

// FetchSingleView renders the profile for the current selection.
func (f *Fetcher) FetchSingleView(ctx context.Context, s Store) (*client.RenderOutput, error) {
	start := time.Now()
	id := f.nextID()
	st := s.ContinuousState()

	s.Dispatch(SingleViewPending{RequestID: id})

	out, err := f.api.RenderSingle(ctx, client.RenderParams{
		From:     st.From.String(),
		Until:    st.Until.String(),
		Query:    st.Query,
		MaxNodes: st.MaxNodes,
	})
	if err != nil {
		f.fail(MsgSingleViewFailed)
		s.Dispatch(SingleViewRejected{RequestID: id, Error: err})
		return nil, err
	}

	s.Dispatch(SingleViewFulfilled{RequestID: id, Output: *out})

	slog.Debug("single view fetched",
		slog.Uint64("request_id", id),
		slog.String("query", st.Query),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

// FetchTags lists the labels known for query.
func (f *Fetcher) FetchTags(ctx context.Context, s Store, query string) ([]string, error) {
	id := f.nextID()
	s.Dispatch(TagsPending{RequestID: id})

	labels, err := f.api.ListLabels(ctx, query)
	if err != nil {
		f.fail(MsgTagsFailed)
		s.Dispatch(TagsRejected{RequestID: id, Error: err})
		return nil, err
	}

	s.Dispatch(TagsFulfilled{RequestID: id, Labels: labels})
	return labels, nil
}

// FetchTagValues lists the values of label for query. Identical concurrent
// lookups share one request.
func (f *Fetcher) FetchTagValues(ctx context.Context, s Store, label, query string) ([]string, error) {
	id := f.nextID()
	s.Dispatch(TagValuesPending{RequestID: id, Label: label})

	values, err := f.labelValues(ctx, label, query)
	if err != nil {
		f.fail(MsgTagValuesFailed)
		s.Dispatch(TagValuesRejected{RequestID: id, Label: label, Error: err})
		return nil, err
	}

	s.Dispatch(TagValuesFulfilled{RequestID: id, Label: label, Values: values})
	return values, nil
}

func (f *Fetcher) labelValues(ctx context.Context, label, query string) ([]string, error) {
	if cached, ok := f.cache.Get(label, query); ok {
		return cached, nil
	}

	// The shared lookup outlives any single caller: a cancelled caller
	// stops waiting, the others keep theirs.
	key := label + "\x00" + query
	ch := f.values.DoChan(key, func() (any, error) {
		values, err := f.api.ListLabelValues(context.WithoutCancel(ctx), label, query)
		if err != nil {
			return nil, err
		}
		f.cache.Put(label, query, values)
		return values, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("shared label values lookup", slog.String("label", label))
		}
		return res.Val.([]string), nil
	}
}

// FetchAllTagValues fetches the values of every known label for query
// concurrently. Failures do not stop the other lookups; they are joined into
// the returned error.
func (f *Fetcher) FetchAllTagValues(ctx context.Context, s Store, query string) error {
	labels := SelectLabelsList(s.ContinuousState())

	errs := make([]error, len(labels))
	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, label := range labels {
		g.Go(func() error {
			if _, err := f.FetchTagValues(ctx, s, label, query); err != nil {
				errs[i] = fmt.Errorf("label %q: %w", label, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
