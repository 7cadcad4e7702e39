package eventtarget

import "go.uber.org/zap"

// Attribute handler slots back "on<name>"-style event properties: at most
// one attribute-mode registration per event name, replaced in place,
// independent of the add/remove listener chain. Host bindings build real
// accessors over EventHandler and SetEventHandler (see the js package).

// EventHandler returns the attribute-style handler for the event name, or
// nil when none is assigned.
func (t *Target) EventHandler(name string) any {
	for node := t.chains()[name]; node != nil; node = node.next {
		if node.mode == modeAttribute {
			return node.callback
		}
	}
	return nil
}

// SetEventHandler assigns the attribute-style handler for the event name,
// replacing any previous one at the chain position it occupied so handler
// order relative to other listeners is preserved. Assigning nil removes the
// slot. Func-shaped handlers are invoked at dispatch; any other non-nil
// value is kept (and returned by EventHandler) but skipped at dispatch.
func (t *Target) SetEventHandler(name string, handler any) {
	chains := t.chains()

	cb := handler
	if cb != nil {
		if normalized, ok := normalizeCallback(cb); ok {
			cb = normalized
		}
		if _, isFunc := cb.(ListenerFunc); !isFunc {
			t.logger.Debug("event handler is not callable and will not be invoked",
				zap.String("event", name))
		}
	}

	var prev *listener
	node := chains[name]
	for node != nil && node.mode != modeAttribute {
		prev = node
		node = node.next
	}

	if node == nil {
		if cb == nil {
			return
		}
		fresh := &listener{callback: cb, key: callbackKey(cb), mode: modeAttribute}
		if prev == nil {
			chains[name] = fresh
		} else {
			prev.next = fresh
		}
		return
	}

	if cb == nil {
		t.unlink(name, prev, node)
		return
	}
	// Splice a fresh node into the old one's position; a dispatch that
	// already captured the old node is unaffected.
	fresh := &listener{callback: cb, key: callbackKey(cb), mode: modeAttribute, next: node.next}
	if prev == nil {
		chains[name] = fresh
	} else {
		prev.next = fresh
	}
}
