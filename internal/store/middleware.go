package store

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/usestring/pyroscope-mcp/internal/action"
)

// DispatchFunc applies an action.
type DispatchFunc func(action.Action)

// API is the part of the Store visible to middlewares.
type API interface {
	action.Dispatcher
	State() RootState
}

// Middleware wraps the dispatch of every action.
type Middleware func(api API) func(next DispatchFunc) DispatchFunc

// chain composes middlewares so the first one sees each action first.
func chain(api API, middlewares []Middleware, base DispatchFunc) DispatchFunc {
	next := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](api)(next)
	}
	return next
}

// LogErrorMiddleware logs the error carried by a failed action once it has
// been applied.
func LogErrorMiddleware(API) func(DispatchFunc) DispatchFunc {
	return func(next DispatchFunc) DispatchFunc {
		return func(a action.Action) {
			next(a)
			f, ok := a.(action.Failure)
			if !ok || f.Err() == nil {
				return
			}
			slog.Error(f.Err().Error(), slog.String("action", a.Type()))
		}
	}
}

// persistPrefix marks persistence lifecycle actions, which are exempt from
// the serializable check.
const persistPrefix = "persist/"

// SerializableCheckMiddleware warns about actions that cannot be encoded as
// JSON.
func SerializableCheckMiddleware(API) func(DispatchFunc) DispatchFunc {
	return func(next DispatchFunc) DispatchFunc {
		return func(a action.Action) {
			if !strings.HasPrefix(a.Type(), persistPrefix) {
				if _, err := json.Marshal(a); err != nil {
					slog.Warn("non-serializable action",
						slog.String("action", a.Type()),
						slog.String("error", err.Error()),
					)
				}
			}
			next(a)
		}
	}
}

// LoggingMiddleware logs every action and how long it took to apply.
func LoggingMiddleware(API) func(DispatchFunc) DispatchFunc {
	return func(next DispatchFunc) DispatchFunc {
		return func(a action.Action) {
			start := time.Now()
			next(a)
			slog.Debug("dispatch",
				slog.String("action", a.Type()),
				slog.Int64("duration_us", time.Since(start).Microseconds()),
			)
		}
	}
}
