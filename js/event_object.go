package js

import (
	"github.com/dop251/goja"

	"github.com/chrisuehlinger/eventshim/eventtarget"
)

// standardEventKeys are the wrapper-surface names a raw event's own fields
// must not shadow on the JS reflection.
var standardEventKeys = map[string]bool{
	"type":             true,
	"target":           true,
	"currentTarget":    true,
	"srcElement":       true,
	"eventPhase":       true,
	"bubbles":          true,
	"cancelable":       true,
	"composed":         true,
	"defaultPrevented": true,
	"cancelBubble":     true,
	"returnValue":      true,
	"isTrusted":        true,
	"timeStamp":        true,
}

// eventObject reflects a dispatched wrapper into a JS object. All listeners
// of one dispatch share the reflection; its accessors read the wrapper live,
// so flags set by one listener are visible to the next. The reflection rides
// on the wrapper itself, so it is released with the wrapper no matter which
// side (script or Go) initiated the dispatch.
func (b *Binder) eventObject(e *eventtarget.Event) *goja.Object {
	if obj, ok := e.HostValue().(*goja.Object); ok {
		return obj
	}
	vm := b.vm
	obj := vm.NewObject()
	e.SetHostValue(obj)

	targetVal := b.targetValue(e.Target())
	obj.Set("type", e.Type())
	obj.Set("target", targetVal)
	obj.Set("srcElement", targetVal)
	obj.Set("bubbles", e.Bubbles())
	obj.Set("cancelable", e.Cancelable())
	obj.Set("composed", e.Composed())
	obj.Set("timeStamp", float64(e.TimeStamp().UnixNano())/1e6)
	obj.DefineDataProperty("isTrusted", vm.ToValue(false), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)

	// Phase constants
	obj.Set("NONE", int(eventtarget.PhaseNone))
	obj.Set("CAPTURING_PHASE", int(eventtarget.PhaseCapturing))
	obj.Set("AT_TARGET", int(eventtarget.PhaseAtTarget))
	obj.Set("BUBBLING_PHASE", int(eventtarget.PhaseBubbling))

	b.accessor(obj, "currentTarget",
		func() goja.Value { return b.targetValue(e.CurrentTarget()) }, nil)
	b.accessor(obj, "eventPhase",
		func() goja.Value { return vm.ToValue(int(e.EventPhase())) }, nil)
	b.accessor(obj, "defaultPrevented",
		func() goja.Value { return vm.ToValue(e.DefaultPrevented()) }, nil)
	b.accessor(obj, "cancelBubble",
		func() goja.Value { return vm.ToValue(e.CancelBubble()) },
		func(v goja.Value) { e.SetCancelBubble(v.ToBoolean()) })
	b.accessor(obj, "returnValue",
		func() goja.Value { return vm.ToValue(e.ReturnValue()) },
		func(v goja.Value) { e.SetReturnValue(v.ToBoolean()) })

	obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		e.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		e.StopImmediatePropagation()
		return goja.Undefined()
	})
	obj.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		e.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("initEvent", func(goja.FunctionCall) goja.Value {
		e.InitEvent()
		return goja.Undefined()
	})
	obj.Set("composedPath", func(goja.FunctionCall) goja.Value {
		path := e.ComposedPath()
		out := make([]any, 0, len(path))
		for _, t := range path {
			out = append(out, b.targetValue(t))
		}
		return vm.ToValue(out)
	})

	// Ad-hoc payload fields (error, detail, whatever the producer set) pass
	// through to the raw event.
	_, isMap := e.Raw().(map[string]any)
	for _, name := range e.FieldNames() {
		key := name
		if !isMap {
			// Struct fields surface under DOM-style names: Error -> error.
			key = lowerFirst(name)
		}
		if standardEventKeys[key] {
			continue
		}
		b.accessor(obj, key,
			func() goja.Value {
				v, ok := e.Get(key)
				if !ok || v == nil {
					return goja.Undefined()
				}
				if gv, isValue := v.(goja.Value); isValue {
					return gv
				}
				return vm.ToValue(v)
			},
			func(v goja.Value) {
				if isMap {
					e.Set(key, v)
					return
				}
				if err := e.Set(key, v.Export()); err != nil {
					b.logger.Debug("event field not writable: " + err.Error())
				}
			})
	}

	return obj
}

// accessor installs a live getter (and optional setter) on obj.
func (b *Binder) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	vm := b.vm
	getter := vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	var setter goja.Value = goja.Undefined()
	if set != nil {
		setter = vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	c := name[0]
	if c < 'A' || c > 'Z' {
		return name
	}
	return string(c+'a'-'A') + name[1:]
}

// targetValue maps a core target back to its bound JS object, null when the
// target is nil or unbound.
func (b *Binder) targetValue(t *eventtarget.Target) goja.Value {
	if t == nil {
		return goja.Null()
	}
	if obj, ok := b.objects[t]; ok {
		return obj
	}
	return goja.Null()
}
