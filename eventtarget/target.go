package eventtarget

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Listener is the object form of an event listener.
type Listener interface {
	HandleEvent(*Event)
}

// ListenerFunc is the function form of an event listener.
type ListenerFunc func(*Event)

// HandleEvent calls f.
func (f ListenerFunc) HandleEvent(e *Event) { f(e) }

// ListenerOptions mirror the DOM addEventListener options dictionary.
// RemoveEventListener reads only Capture.
type ListenerOptions struct {
	// Capture registers the listener for the capturing phase. With
	// single-target dispatch the flag does not change when the listener
	// runs; it only distinguishes registrations for dedup and removal.
	Capture bool

	// Passive promises the listener will not cancel the event; its
	// PreventDefault calls are rejected and diagnosed.
	Passive bool

	// Once removes the registration immediately before its first
	// invocation.
	Once bool
}

type listenerMode uint8

const (
	modeCapture listenerMode = iota
	modeBubble
	modeAttribute
)

// listener is one node of a singly-linked registration chain. The chain is
// walked and spliced in place so listeners can add and remove registrations
// on the same target mid-dispatch.
type listener struct {
	callback any
	key      any
	mode     listenerMode
	passive  bool
	once     bool
	next     *listener
}

// Target is an EventTarget: the add/remove/dispatch surface over per-name
// listener chains. Create one with NewTarget; methods on a zero Target
// panic. Targets are not safe for concurrent use.
type Target struct {
	listeners map[string]*listener
	logger    *zap.Logger
}

// Option configures a Target.
type Option func(*Target)

// WithLogger routes the target's diagnostics (listener panics, rejected
// preventDefault calls) to the given logger instead of discarding them.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Target) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTarget creates an EventTarget with an empty listener registry.
func NewTarget(opts ...Option) *Target {
	t := &Target{
		listeners: make(map[string]*listener),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// chains asserts the target was built by NewTarget and returns its registry.
func (t *Target) chains() map[string]*listener {
	if t == nil || t.listeners == nil {
		panic("eventtarget: Target is not initialized; use NewTarget")
	}
	return t.listeners
}

// AddEventListener registers callback for events of the given name. The
// callback may be a func(*Event), a ListenerFunc, or a Listener; anything
// else is rejected with ErrInvalidListener, and nil is a no-op. Adding a
// callback already registered with the same capture flag is a no-op, and the
// first registration's Passive/Once flags stay in effect.
//
// Func-shaped callbacks are identified by code pointer: closures built from
// the same function literal (for example in a loop) count as the same
// callback, so the second add is a no-op and a removal can match either.
// Register distinct Listener values when each registration must keep its own
// identity.
func (t *Target) AddEventListener(name string, callback any, opts *ListenerOptions) error {
	chains := t.chains()
	if callback == nil {
		return nil
	}
	cb, ok := normalizeCallback(callback)
	if !ok {
		return fmt.Errorf("%w (%T)", ErrInvalidListener, callback)
	}
	if opts == nil {
		opts = &ListenerOptions{}
	}
	mode := modeBubble
	if opts.Capture {
		mode = modeCapture
	}
	key := callbackKey(cb)

	node := &listener{
		callback: cb,
		key:      key,
		mode:     mode,
		passive:  opts.Passive,
		once:     opts.Once,
	}

	head := chains[name]
	if head == nil {
		chains[name] = node
		return nil
	}
	var tail *listener
	for cur := head; cur != nil; cur = cur.next {
		if cur.key == key && cur.mode == mode {
			return nil
		}
		tail = cur
	}
	tail.next = node
	return nil
}

// RemoveEventListener removes the first registration matching the callback's
// identity and capture flag. Unknown callbacks and nil are no-ops.
func (t *Target) RemoveEventListener(name string, callback any, opts *ListenerOptions) {
	chains := t.chains()
	if callback == nil {
		return
	}
	cb, ok := normalizeCallback(callback)
	if !ok {
		return
	}
	if opts == nil {
		opts = &ListenerOptions{}
	}
	mode := modeBubble
	if opts.Capture {
		mode = modeCapture
	}
	key := callbackKey(cb)

	var prev *listener
	for node := chains[name]; node != nil; node = node.next {
		if node.key == key && node.mode == mode {
			t.unlink(name, prev, node)
			return
		}
		prev = node
	}
}

// DispatchEvent dispatches a raw event to the listeners registered for its
// type and reports false when a listener canceled the default action. When
// no listener is registered for the type it returns true without building a
// wrapper.
//
// Listeners run synchronously in insertion order. A panicking listener is
// logged and isolated; the rest of the chain still runs unless a listener
// called StopImmediatePropagation.
func (t *Target) DispatchEvent(raw any) (bool, error) {
	chains := t.chains()
	if raw == nil {
		return false, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	sh := shapeOf(reflect.TypeOf(raw))
	typ, ok := rawType(raw, sh)
	if !ok || typ == "" {
		return false, fmt.Errorf("%w: missing event type (%T)", ErrInvalidEvent, raw)
	}
	if chains[typ] == nil {
		return true, nil
	}

	e := wrap(t, raw, sh, typ)
	s := e.state

	var prev *listener
	node := chains[typ]
	for node != nil {
		// A once listener leaves the chain before it runs, so it cannot
		// fire twice even if it re-enters dispatch.
		if node.once {
			t.unlink(typ, prev, node)
		} else {
			prev = node
		}

		if node.passive {
			s.activePassive = node
		} else {
			s.activePassive = nil
		}

		t.invoke(node, e, typ)

		if s.immediate {
			break
		}
		// The link captured on the node survives the node's own removal,
		// so mutation of the chain mid-dispatch cannot derail the walk.
		node = node.next
	}

	s.activePassive = nil
	s.phase = PhaseNone
	s.currentTarget = nil
	return !s.canceled, nil
}

// HasEventListeners reports whether any listener is registered for the type.
func (t *Target) HasEventListeners(name string) bool {
	return t.chains()[name] != nil
}

// invoke runs one listener, isolating the rest of the chain from its
// panics. Attribute-slot entries run only when func-shaped.
func (t *Target) invoke(node *listener, e *Event, typ string) {
	defer func() {
		if p := recover(); p != nil {
			t.logger.Error("event listener panicked",
				zap.String("event", typ),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()

	if node.mode == modeAttribute {
		if fn, ok := node.callback.(ListenerFunc); ok {
			fn(e)
		}
		return
	}
	switch cb := node.callback.(type) {
	case ListenerFunc:
		cb(e)
	case Listener:
		cb.HandleEvent(e)
	}
}

// unlink splices node out of the chain for name, prev being its predecessor
// or nil for the head.
func (t *Target) unlink(name string, prev, node *listener) {
	if prev != nil {
		prev.next = node.next
		return
	}
	if node.next == nil {
		delete(t.listeners, name)
		return
	}
	t.listeners[name] = node.next
}

// normalizeCallback folds the accepted callback forms into the two shapes
// dispatch understands.
func normalizeCallback(callback any) (any, bool) {
	switch cb := callback.(type) {
	case ListenerFunc:
		return cb, true
	case func(*Event):
		return ListenerFunc(cb), true
	case Listener:
		return cb, true
	}
	return nil, false
}

// funcKey identifies a func-shaped callback by code pointer. Closures built
// from the same function literal share a code pointer and therefore
// collapse; callers that need distinct removable registrations should use
// distinct Listener values.
type funcKey struct{ pc uintptr }

// callbackKey derives the identity used for dedup and removal.
func callbackKey(cb any) any {
	v := reflect.ValueOf(cb)
	if v.Kind() == reflect.Func {
		return funcKey{pc: v.Pointer()}
	}
	if t := reflect.TypeOf(cb); t != nil && t.Comparable() {
		return cb
	}
	// Not comparable: the registration is unique and never deduplicates.
	return new(int)
}
