// Package action defines the messages that flow through the store.
package action

// Action is a message dispatched to the store. Type names are namespaced by
// the slice that handles them ("continuous/setFrom", "ui/setColorMode").
type Action interface {
	Type() string
}

// Failure is implemented by actions that carry the error of a failed
// operation (the rejected half of a fetch lifecycle).
type Failure interface {
	Action
	Err() error
}

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(a Action)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(a Action)

// Dispatch calls f(a).
func (f DispatchFunc) Dispatch(a Action) {
	f(a)
}
