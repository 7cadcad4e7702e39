package eventtarget

import "errors"

// Sentinel errors reported for invalid arguments. Precondition violations
// (calling methods on a zero Target or a foreign Event value) are programmer
// errors and panic instead.
var (
	// ErrInvalidListener is returned when a listener is neither func-shaped
	// (func(*Event) or ListenerFunc) nor a Listener implementation.
	ErrInvalidListener = errors.New("listener is not a function or handler object")

	// ErrInvalidEvent is returned when a dispatched value is nil or carries
	// no event type.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnknownField is returned by Event.Set when the raw event has no
	// field of the requested name.
	ErrUnknownField = errors.New("no such field on raw event")

	// ErrUnknownMethod is returned by Event.Call when the raw event has no
	// method of the requested name.
	ErrUnknownMethod = errors.New("no such method on raw event")

	// ErrImmutableRaw is returned by Event.Set when the raw event was
	// dispatched by value and its fields cannot be written.
	ErrImmutableRaw = errors.New("raw event is not addressable")
)
