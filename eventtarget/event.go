package eventtarget

import (
	"time"

	"go.uber.org/zap"
)

// Phase is the event dispatch phase. This implementation performs
// single-target dispatch only, so a live wrapper is always in PhaseAtTarget;
// the other values exist for surface compatibility.
type Phase int

// Phase values, matching the DOM Event constants.
const (
	PhaseNone      Phase = 0
	PhaseCapturing Phase = 1
	PhaseAtTarget  Phase = 2
	PhaseBubbling  Phase = 3
)

// Event wraps a raw event value for the duration of one dispatch. It exposes
// the standard event surface, backed by private dispatch state only
// Target.DispatchEvent creates, and forwards everything else to the raw
// value through its shape.
//
// An Event is terminal after its dispatch returns: the phase drops to
// PhaseNone and CurrentTarget becomes nil. Re-dispatching a raw value builds
// a fresh wrapper.
type Event struct {
	state *dispatchState
}

// dispatchState is the wrapper's mutable dispatch bookkeeping. Keeping it
// behind an unexported pointer means outside code can neither forge a live
// wrapper nor tamper with one mid-dispatch.
type dispatchState struct {
	target        *Target
	raw           any
	sh            *shape
	typ           string
	phase         Phase
	currentTarget *Target
	canceled      bool
	stopped       bool
	immediate     bool
	activePassive *listener
	timestamp     time.Time
	logger        *zap.Logger
	host          any
}

// wrap builds the dispatch wrapper for one dispatch pass on t.
func wrap(t *Target, raw any, sh *shape, typ string) *Event {
	return &Event{state: &dispatchState{
		target:        t,
		raw:           raw,
		sh:            sh,
		typ:           typ,
		phase:         PhaseAtTarget,
		currentTarget: t,
		timestamp:     rawTimeStamp(raw, sh, time.Now()),
		logger:        t.logger,
	}}
}

// st asserts that e is a live wrapper created by this package. Calling any
// accessor on a zero or hand-built Event is a programmer error.
func (e *Event) st() *dispatchState {
	if e == nil || e.state == nil {
		panic("eventtarget: Event was not created by Target.DispatchEvent; accessors require a dispatched wrapper")
	}
	return e.state
}

// Raw returns the wrapped raw event value.
func (e *Event) Raw() any { return e.st().raw }

// Type returns the event type the raw event was dispatched under.
func (e *Event) Type() string { return e.st().typ }

// Target returns the target the event was dispatched on.
func (e *Event) Target() *Target { return e.st().target }

// CurrentTarget returns the target currently handling the event, or nil once
// dispatch has completed.
func (e *Event) CurrentTarget() *Target { return e.st().currentTarget }

// ComposedPath returns the propagation path. With single-target dispatch
// that is just the current target, or nothing after dispatch completes.
func (e *Event) ComposedPath() []*Target {
	if ct := e.st().currentTarget; ct != nil {
		return []*Target{ct}
	}
	return nil
}

// EventPhase returns the current dispatch phase.
func (e *Event) EventPhase() Phase { return e.st().phase }

// StopPropagation requests that propagation stop. The flag only matters to a
// surrounding tree-walking dispatcher; it does not short-circuit the current
// listener chain. Forwards to the raw event's own StopPropagation when it
// has one.
func (e *Event) StopPropagation() {
	s := e.st()
	s.stopped = true
	if stopper, ok := s.raw.(PropagationStopper); ok {
		stopper.StopPropagation()
	}
}

// StopImmediatePropagation stops the current dispatch before any further
// listener in the chain runs. Forwards to the raw event's own hook when it
// has one.
func (e *Event) StopImmediatePropagation() {
	s := e.st()
	s.stopped = true
	s.immediate = true
	if stopper, ok := s.raw.(ImmediatePropagationStopper); ok {
		stopper.StopImmediatePropagation()
	}
}

// Bubbles reports the raw event's bubbles flag; absent means false.
func (e *Event) Bubbles() bool {
	s := e.st()
	return rawBool(s.raw, s.sh, "Bubbles")
}

// Cancelable reports the raw event's cancelable flag; absent means false.
func (e *Event) Cancelable() bool {
	s := e.st()
	return rawBool(s.raw, s.sh, "Cancelable")
}

// Composed reports the raw event's composed flag; absent means false.
func (e *Event) Composed() bool {
	s := e.st()
	return rawBool(s.raw, s.sh, "Composed")
}

// PreventDefault cancels the event's default action. It has no effect unless
// the event is cancelable, and is rejected with a diagnostic when called
// while a passive listener is running. Forwards to the raw event's own
// PreventDefault when the cancellation takes effect.
func (e *Event) PreventDefault() {
	s := e.st()
	if s.activePassive != nil {
		s.logger.Warn("preventDefault ignored inside passive listener",
			zap.String("event", s.typ))
		return
	}
	if !e.Cancelable() {
		return
	}
	s.canceled = true
	if preventer, ok := s.raw.(DefaultPreventer); ok {
		preventer.PreventDefault()
	}
}

// DefaultPrevented reports whether PreventDefault canceled the event.
func (e *Event) DefaultPrevented() bool { return e.st().canceled }

// TimeStamp returns the event's creation time, taken from the raw event's
// TimeStamp when present, else the wrap time.
func (e *Event) TimeStamp() time.Time { return e.st().timestamp }

// IsTrusted is always false: this package never produces trusted events.
func (e *Event) IsTrusted() bool {
	e.st()
	return false
}

// SrcElement is a legacy alias for Target.
func (e *Event) SrcElement() *Target { return e.Target() }

// CancelBubble is a legacy alias for the stopped flag.
func (e *Event) CancelBubble() bool { return e.st().stopped }

// SetCancelBubble true behaves like StopPropagation, also mirroring into a
// raw CancelBubble bool field when the raw event carries one. Setting false
// is a no-op.
func (e *Event) SetCancelBubble(v bool) {
	s := e.st()
	if !v {
		return
	}
	s.stopped = true
	if s.sh != nil {
		// Best effort; value-typed raws are not writable.
		_ = s.sh.setField(s.raw, "CancelBubble", true)
	} else if m, ok := s.raw.(map[string]any); ok {
		if _, has := m["cancelBubble"]; has {
			m["cancelBubble"] = true
		}
	}
}

// ReturnValue is a legacy alias for !DefaultPrevented.
func (e *Event) ReturnValue() bool { return !e.st().canceled }

// SetReturnValue false behaves like PreventDefault. Setting true is a no-op.
func (e *Event) SetReturnValue(v bool) {
	if !v {
		e.PreventDefault()
	} else {
		e.st()
	}
}

// InitEvent is retained for surface compatibility and does nothing; a
// wrapper cannot be re-initialized mid-dispatch.
func (e *Event) InitEvent(_ ...any) {
	s := e.st()
	s.logger.Debug("initEvent ignored on dispatched event", zap.String("event", s.typ))
}

// Get reads a named field of the raw event: a map key for map raws, an
// exported struct field (or its lowercase-first alias) otherwise. ok is
// false when the raw event has no such field.
func (e *Event) Get(name string) (value any, ok bool) {
	s := e.st()
	if m, isMap := s.raw.(map[string]any); isMap {
		value, ok = m[name]
		return value, ok
	}
	return s.sh.field(s.raw, name)
}

// Set writes a named field of the raw event. Struct raws must have been
// dispatched as pointers for their fields to be writable.
func (e *Event) Set(name string, value any) error {
	s := e.st()
	if m, isMap := s.raw.(map[string]any); isMap {
		m[name] = value
		return nil
	}
	return s.sh.setField(s.raw, name, value)
}

// Call invokes a named method of the raw event with the raw event as
// receiver and returns its results.
func (e *Event) Call(name string, args ...any) ([]any, error) {
	s := e.st()
	return s.sh.call(s.raw, name, args)
}

// HostValue returns the companion value attached by SetHostValue, or nil.
func (e *Event) HostValue() any { return e.st().host }

// SetHostValue attaches a host-binding companion to the wrapper, typically
// a script engine's reflection of it. The value shares the wrapper's
// lifetime, so bindings need no side table keyed by wrapper identity.
func (e *Event) SetHostValue(v any) { e.st().host = v }

// FieldNames lists the raw event's own field names: map keys for map raws,
// exported struct fields otherwise. Host bindings use it to mirror ad-hoc
// payload fields onto their event objects.
func (e *Event) FieldNames() []string {
	s := e.st()
	if m, isMap := s.raw.(map[string]any); isMap {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		return names
	}
	if s.sh == nil {
		return nil
	}
	return s.sh.fieldNames()
}
