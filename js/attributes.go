package js

import (
	"github.com/dop251/goja"

	"github.com/chrisuehlinger/eventshim/eventtarget"
)

// DefineEventAttribute installs an on<name> accessor pair on a bound JS
// object: reading returns the assigned handler (or null), assigning replaces
// the single attribute-mode registration in place, and assigning a
// non-callable, non-object value clears it. The object must already have
// been passed to BindEventTarget.
func (b *Binder) DefineEventAttribute(obj *goja.Object, name string) {
	bd, ok := b.bindings[obj]
	if !ok {
		panic(b.vm.NewTypeError("object is not an EventTarget; call BindEventTarget first"))
	}
	vm := b.vm

	getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
		if bd.core.EventHandler(name) == nil {
			return goja.Null()
		}
		if v, has := bd.attrs[name]; has {
			return v
		}
		// Assigned from Go; there is no JS value to hand back.
		return goja.Null()
	})

	setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		v := call.Argument(0)
		if fn, callable := goja.AssertFunction(v); callable {
			lst := &jsListener{binder: b, target: obj, value: v, fn: fn}
			bd.core.SetEventHandler(name, eventtarget.ListenerFunc(lst.HandleEvent))
			bd.attrs[name] = v
			return goja.Undefined()
		}
		if o, isObject := v.(*goja.Object); isObject && !goja.IsNull(v) {
			// Kept and readable, but never invoked: attribute handlers
			// must be callable.
			bd.core.SetEventHandler(name, o)
			bd.attrs[name] = v
			return goja.Undefined()
		}
		bd.core.SetEventHandler(name, nil)
		delete(bd.attrs, name)
		return goja.Undefined()
	})

	obj.DefineAccessorProperty("on"+name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}
