// Package js exposes the eventtarget core inside a goja JavaScript runtime
// (pure Go ES5.1+ implementation): DOM-shaped addEventListener /
// removeEventListener / dispatchEvent methods, Event constructors, and
// on<name> attribute accessors, all backed by eventtarget.Target dispatch.
package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/eventshim/eventtarget"
)

// Binder wires goja objects to eventtarget targets. One Binder serves one
// runtime; it is single-threaded like the runtime itself.
type Binder struct {
	vm     *goja.Runtime
	logger *zap.Logger

	bindings map[*goja.Object]*binding
	objects  map[*eventtarget.Target]*goja.Object
}

// binding is the per-target bookkeeping: the core target plus the JS-side
// listener identities the core cannot compare itself.
type binding struct {
	core      *eventtarget.Target
	listeners []*jsListener
	attrs     map[string]goja.Value
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithLogger routes binder and listener diagnostics to the given logger.
func WithLogger(logger *zap.Logger) BinderOption {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBinder creates a Binder for the runtime.
func NewBinder(vm *goja.Runtime, opts ...BinderOption) *Binder {
	b := &Binder{
		vm:       vm,
		logger:   zap.NewNop(),
		bindings: make(map[*goja.Object]*binding),
		objects:  make(map[*eventtarget.Target]*goja.Object),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BindEventTarget installs the EventTarget interface methods on a JS object,
// backed by a fresh core target, and returns that target so Go code can
// dispatch to JS listeners directly.
func (b *Binder) BindEventTarget(obj *goja.Object) *eventtarget.Target {
	if bd, ok := b.bindings[obj]; ok {
		return bd.core
	}

	bd := &binding{
		core:  eventtarget.NewTarget(eventtarget.WithLogger(b.logger)),
		attrs: make(map[string]goja.Value),
	}
	b.bindings[obj] = bd
	b.objects[bd.core] = obj

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		name := call.Arguments[0].String()
		lst := b.listenerFor(bd, obj, call.Arguments[1], true)
		if lst == nil {
			return goja.Undefined()
		}
		if err := bd.core.AddEventListener(name, lst, parseListenerOptions(b.vm, call.Argument(2))); err != nil {
			panic(b.vm.NewTypeError(err.Error()))
		}
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		name := call.Arguments[0].String()
		lst := b.listenerFor(bd, obj, call.Arguments[1], false)
		if lst == nil {
			return goja.Undefined()
		}
		bd.core.RemoveEventListener(name, lst, parseListenerOptions(b.vm, call.Argument(2)))
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(b.vm.NewTypeError("dispatchEvent requires an event"))
		}
		arg := call.Arguments[0]
		evObj, ok := arg.(*goja.Object)
		if !ok || goja.IsNull(arg) || goja.IsUndefined(arg) {
			panic(b.vm.NewTypeError("dispatchEvent argument is not an event"))
		}

		raw := exportRawEvent(evObj)

		notCanceled, err := bd.core.DispatchEvent(raw)
		if err != nil {
			panic(b.vm.NewTypeError(err.Error()))
		}
		return b.vm.ToValue(notCanceled)
	})

	return bd.core
}

// Target returns the core target bound to a JS object, or nil.
func (b *Binder) Target(obj *goja.Object) *eventtarget.Target {
	if bd, ok := b.bindings[obj]; ok {
		return bd.core
	}
	return nil
}

// listenerFor maps a JS callback value to a stable Go listener, comparing by
// goja identity so a re-added or removed callback resolves to the same
// registration. Returns nil for null/undefined; primitives panic with a
// TypeError like a native EventTarget.
func (b *Binder) listenerFor(bd *binding, target *goja.Object, v goja.Value, create bool) *jsListener {
	if goja.IsNull(v) || goja.IsUndefined(v) {
		return nil
	}
	for _, lst := range bd.listeners {
		if lst.value.SameAs(v) {
			return lst
		}
	}
	if !create {
		return nil
	}
	fn, callable := goja.AssertFunction(v)
	obj, isObject := v.(*goja.Object)
	if !callable && !isObject {
		panic(b.vm.NewTypeError("event listener is not a function or object"))
	}
	lst := &jsListener{binder: b, target: target, value: v, obj: obj, fn: fn}
	bd.listeners = append(bd.listeners, lst)
	return lst
}

// jsListener adapts one JS callback to the core Listener interface. Pointer
// identity gives the core the dedup key; SameAs lookup in listenerFor keeps
// that identity stable per JS value.
type jsListener struct {
	binder *Binder
	target *goja.Object
	value  goja.Value
	obj    *goja.Object
	fn     goja.Callable
}

// HandleEvent reflects the wrapper into JS and invokes the callback with the
// target as receiver. A thrown exception is logged, not propagated: sibling
// listeners still run.
func (l *jsListener) HandleEvent(e *eventtarget.Event) {
	evObj := l.binder.eventObject(e)

	var err error
	switch {
	case l.fn != nil:
		_, err = l.fn(l.target, evObj)
	case l.obj != nil:
		if h, ok := goja.AssertFunction(l.obj.Get("handleEvent")); ok {
			_, err = h(l.obj, evObj)
		}
	}
	if err != nil {
		l.binder.logger.Error("event listener threw",
			zap.String("event", e.Type()),
			zap.Error(err))
	}
}

// parseListenerOptions accepts the DOM forms: a boolean capture flag or an
// options object with capture/once/passive.
func parseListenerOptions(vm *goja.Runtime, arg goja.Value) *eventtarget.ListenerOptions {
	opts := &eventtarget.ListenerOptions{}
	if arg == nil || goja.IsUndefined(arg) || goja.IsNull(arg) {
		return opts
	}
	if obj, ok := arg.(*goja.Object); ok {
		if v := obj.Get("capture"); v != nil {
			opts.Capture = v.ToBoolean()
		}
		if v := obj.Get("once"); v != nil {
			opts.Once = v.ToBoolean()
		}
		if v := obj.Get("passive"); v != nil {
			opts.Passive = v.ToBoolean()
		}
		return opts
	}
	opts.Capture = arg.ToBoolean()
	return opts
}

// exportRawEvent turns a JS event object into the map-backed raw event the
// core wraps. Standard init fields become native Go values; everything else
// stays a goja.Value and passes through the wrapper untouched.
func exportRawEvent(evObj *goja.Object) map[string]any {
	raw := make(map[string]any)
	for _, key := range evObj.Keys() {
		v := evObj.Get(key)
		if v == nil {
			continue
		}
		switch key {
		case "type":
			raw[key] = v.String()
		case "bubbles", "cancelable", "composed", "cancelBubble":
			raw[key] = v.ToBoolean()
		default:
			raw[key] = v
		}
	}
	return raw
}
