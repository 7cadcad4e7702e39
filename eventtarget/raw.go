package eventtarget

import "time"

// A raw event is any Go value carrying an event type. The type is resolved in
// order: the Typer interface, an exported Type string field (including
// promoted fields), or the "type" key of a map[string]any. Bubbles,
// Cancelable, Composed and TimeStamp resolve the same way; absent fields read
// as false (or the wrap time, for TimeStamp).

// Typer is implemented by raw events that report their type directly rather
// than through a Type field or map key.
type Typer interface {
	EventType() string
}

// PropagationStopper is an optional hook on a raw event. When present, the
// wrapper's StopPropagation forwards to it so an already-capable event keeps
// its own bookkeeping.
type PropagationStopper interface {
	StopPropagation()
}

// ImmediatePropagationStopper is the optional raw hook behind the wrapper's
// StopImmediatePropagation.
type ImmediatePropagationStopper interface {
	StopImmediatePropagation()
}

// DefaultPreventer is the optional raw hook behind the wrapper's
// PreventDefault. It is only invoked when the wrapper actually cancels the
// event (the event is cancelable and no passive listener is active).
type DefaultPreventer interface {
	PreventDefault()
}

// Basic is a minimal raw event. A Type is required; everything else is
// optional. Extra payload goes in Detail and is readable through the
// wrapper's Get method.
type Basic struct {
	Type       string
	Bubbles    bool
	Cancelable bool
	Composed   bool
	Detail     map[string]any
}

// rawType resolves the event type of a raw value, using the shape for struct
// field access. ok is false when no type can be found.
func rawType(raw any, sh *shape) (typ string, ok bool) {
	if t, isTyper := raw.(Typer); isTyper {
		return t.EventType(), true
	}
	if m, isMap := raw.(map[string]any); isMap {
		s, isStr := m["type"].(string)
		return s, isStr
	}
	if sh != nil {
		if v, found := sh.field(raw, "Type"); found {
			s, isStr := v.(string)
			return s, isStr
		}
	}
	return "", false
}

// rawBool reads an optional boolean field (Bubbles, Cancelable, Composed,
// CancelBubble) from a raw value. Absent or non-boolean reads as false.
func rawBool(raw any, sh *shape, name string) bool {
	if m, isMap := raw.(map[string]any); isMap {
		b, _ := m[lowerFirst(name)].(bool)
		return b
	}
	if sh != nil {
		if v, found := sh.field(raw, name); found {
			b, _ := v.(bool)
			return b
		}
	}
	return false
}

// rawTimeStamp reads the raw event's TimeStamp if it carries one, falling
// back to now.
func rawTimeStamp(raw any, sh *shape, now time.Time) time.Time {
	if m, isMap := raw.(map[string]any); isMap {
		if ts, isTime := m["timeStamp"].(time.Time); isTime {
			return ts
		}
		return now
	}
	if sh != nil {
		if v, found := sh.field(raw, "TimeStamp"); found {
			if ts, isTime := v.(time.Time); isTime && !ts.IsZero() {
				return ts
			}
		}
	}
	return now
}
