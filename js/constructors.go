package js

import "github.com/dop251/goja"

// SetupEventConstructors defines Event, CustomEvent, and ErrorEvent on the
// global object. The constructors produce plain data objects carrying the
// init fields; the full event surface (phases, stop/prevent methods, legacy
// aliases) is supplied by the dispatch wrapper when the object is dispatched.
func (b *Binder) SetupEventConstructors() {
	vm := b.vm

	vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		return b.newEvent(call, nil)
	})

	vm.Set("CustomEvent", func(call goja.ConstructorCall) *goja.Object {
		return b.newEvent(call, []string{"detail"})
	})

	vm.Set("ErrorEvent", func(call goja.ConstructorCall) *goja.Object {
		event := b.newEvent(call, []string{"message", "filename", "lineno", "colno", "error"})
		if goja.IsUndefined(event.Get("type")) || event.Get("type").String() == "" {
			event.Set("type", "error")
		}
		return event
	})
}

// newEvent builds an event data object from a (type, init) constructor call,
// copying the standard init members plus any extras named by the subtype.
func (b *Binder) newEvent(call goja.ConstructorCall, extras []string) *goja.Object {
	vm := b.vm
	event := vm.NewObject()

	eventType := ""
	if len(call.Arguments) > 0 {
		eventType = call.Arguments[0].String()
	}
	event.Set("type", eventType)
	event.Set("bubbles", false)
	event.Set("cancelable", false)
	event.Set("composed", false)

	if len(call.Arguments) > 1 {
		if init, ok := call.Arguments[1].(*goja.Object); ok {
			for _, key := range []string{"bubbles", "cancelable", "composed"} {
				if v := init.Get(key); v != nil && !goja.IsUndefined(v) {
					event.Set(key, v.ToBoolean())
				}
			}
			for _, key := range extras {
				if v := init.Get(key); v != nil && !goja.IsUndefined(v) {
					event.Set(key, v)
				}
			}
		}
	}
	return event
}
