package js

import (
	"testing"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/eventshim/eventtarget"
)

// newTestTarget builds a runtime with one bound EventTarget exposed as the
// global "target".
func newTestTarget(t *testing.T) (*goja.Runtime, *Binder, *eventtarget.Target) {
	t.Helper()
	vm := goja.New()
	binder := NewBinder(vm)
	binder.SetupEventConstructors()

	obj := vm.NewObject()
	core := binder.BindEventTarget(obj)
	vm.Set("target", obj)
	return vm, binder, core
}

func run(t *testing.T, vm *goja.Runtime, code string) goja.Value {
	t.Helper()
	v, err := vm.RunString(code)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	return v
}

func TestDispatchToScriptListener(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var seen = null;
		target.addEventListener('click', function(e) {
			seen = e.type + '/' + e.eventPhase + '/' + (e.currentTarget === target) + '/' + e.isTrusted;
		});
		var ok = target.dispatchEvent(new Event('click'));
	`)
	if got := run(t, vm, "seen").String(); got != "click/2/true/false" {
		t.Errorf("listener observed %q", got)
	}
	if !run(t, vm, "ok").ToBoolean() {
		t.Error("dispatchEvent should return true without preventDefault")
	}
}

func TestRemoveScriptListener(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var count = 0;
		function handler() { count++; }
		target.addEventListener('x', handler);
		target.dispatchEvent(new Event('x'));
		target.removeEventListener('x', handler);
		target.dispatchEvent(new Event('x'));
	`)
	if got := run(t, vm, "count").ToInteger(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestDuplicateScriptListener(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var count = 0;
		function handler() { count++; }
		target.addEventListener('x', handler);
		target.addEventListener('x', handler);
		target.addEventListener('x', handler, true); // capture: distinct
		target.dispatchEvent(new Event('x'));
	`)
	if got := run(t, vm, "count").ToInteger(); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestOnceOption(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var count = 0;
		target.addEventListener('x', function() { count++; }, { once: true });
		target.dispatchEvent(new Event('x'));
		target.dispatchEvent(new Event('x'));
	`)
	if got := run(t, vm, "count").ToInteger(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestPreventDefaultFromScript(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		target.addEventListener('submit', function(e) { e.preventDefault(); });
		var cancelable = target.dispatchEvent(new Event('submit', { cancelable: true }));
		var plain = target.dispatchEvent(new Event('submit'));
	`)
	if run(t, vm, "cancelable").ToBoolean() {
		t.Error("cancelable dispatch should return false")
	}
	if !run(t, vm, "plain").ToBoolean() {
		t.Error("non-cancelable dispatch should return true")
	}
}

func TestPassiveOptionFromScript(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var prevented = null;
		target.addEventListener('scroll', function(e) {
			e.preventDefault();
			prevented = e.defaultPrevented;
		}, { passive: true });
		var ok = target.dispatchEvent(new Event('scroll', { cancelable: true }));
	`)
	if run(t, vm, "prevented").ToBoolean() {
		t.Error("passive listener managed to cancel the event")
	}
	if !run(t, vm, "ok").ToBoolean() {
		t.Error("dispatchEvent should return true under a passive listener")
	}
}

func TestStopImmediatePropagationFromScript(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var order = [];
		target.addEventListener('x', function(e) { order.push(1); e.stopImmediatePropagation(); });
		target.addEventListener('x', function() { order.push(2); });
		target.dispatchEvent(new Event('x'));
	`)
	if got := run(t, vm, "order.join(',')").String(); got != "1" {
		t.Errorf("order = %q, want \"1\"", got)
	}
}

func TestHandleEventObjectListener(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var seen = false;
		target.addEventListener('x', { handleEvent: function(e) { seen = (e.type === 'x'); } });
		target.dispatchEvent(new Event('x'));
	`)
	if !run(t, vm, "seen").ToBoolean() {
		t.Error("handleEvent object listener did not run")
	}
}

func TestEventAttributeAccessor(t *testing.T) {
	vm, binder, _ := newTestTarget(t)
	obj := run(t, vm, "target").(*goja.Object)
	binder.DefineEventAttribute(obj, "foo")

	run(t, vm, `
		var calls = [];
		target.addEventListener('foo', function() { calls.push('listener'); });
		function a() { calls.push('a'); }
		function b() { calls.push('b'); }
		target.onfoo = a;
		target.onfoo = b;
		var handler = target.onfoo;
		target.dispatchEvent(new Event('foo'));
		target.onfoo = null;
		target.dispatchEvent(new Event('foo'));
	`)
	if got := run(t, vm, "calls.join(',')").String(); got != "listener,b,listener" {
		t.Errorf("calls = %q", got)
	}
	if !run(t, vm, "handler === b").ToBoolean() {
		t.Error("onfoo getter should return the assigned function")
	}
	if !run(t, vm, "target.onfoo === null").ToBoolean() {
		t.Error("cleared onfoo should read null")
	}
}

func TestCustomEventDetailPassThrough(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var detail = null;
		target.addEventListener('ping', function(e) { detail = e.detail; });
		target.dispatchEvent(new CustomEvent('ping', { detail: { n: 7 } }));
	`)
	if got := run(t, vm, "detail.n").ToInteger(); got != 7 {
		t.Errorf("detail.n = %d, want 7", got)
	}
}

func TestErrorEventFields(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var msg = null, err = null;
		target.addEventListener('error', function(e) { msg = e.message; err = e.error; });
		target.dispatchEvent(new ErrorEvent('error', { message: 'boom', error: { code: 3 } }));
	`)
	if got := run(t, vm, "msg").String(); got != "boom" {
		t.Errorf("message = %q", got)
	}
	if got := run(t, vm, "err.code").ToInteger(); got != 3 {
		t.Errorf("error.code = %d, want 3", got)
	}
}

func TestThrowingListenerIsolated(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var ran = false;
		target.addEventListener('x', function() { throw new Error('bad listener'); });
		target.addEventListener('x', function() { ran = true; });
		var ok = target.dispatchEvent(new Event('x'));
	`)
	if !run(t, vm, "ran").ToBoolean() {
		t.Error("listener after the throwing one did not run")
	}
	if !run(t, vm, "ok").ToBoolean() {
		t.Error("a throwing listener should not change the dispatch result")
	}
}

func TestDispatchEventArgumentErrors(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	if _, err := vm.RunString("target.dispatchEvent()"); err == nil {
		t.Error("dispatchEvent() should throw")
	}
	if _, err := vm.RunString("target.dispatchEvent({})"); err == nil {
		t.Error("dispatchEvent of a typeless object should throw")
	}
}

func TestGoDispatchReachesScriptListeners(t *testing.T) {
	vm, _, core := newTestTarget(t)
	run(t, vm, `
		var seen = null;
		target.addEventListener('sync', function(e) { seen = e.label; });
	`)

	type labeled struct {
		Type  string
		Label string
	}
	if _, err := core.DispatchEvent(labeled{Type: "sync", Label: "from-go"}); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if got := run(t, vm, "seen").String(); got != "from-go" {
		t.Errorf("script listener saw %q, want %q", got, "from-go")
	}
}

func TestGoDispatchWrapperReflectionLifetime(t *testing.T) {
	vm, _, core := newTestTarget(t)
	run(t, vm, `
		var seen = [];
		target.addEventListener('x', function(e) { seen.push(e); });
		target.addEventListener('x', function(e) { seen.push(e); });
	`)

	// Several Go-side dispatches: the binder must not accumulate state,
	// and each pass gets a fresh reflection shared by its listeners.
	for i := 0; i < 3; i++ {
		if _, err := core.DispatchEvent(map[string]any{"type": "x"}); err != nil {
			t.Fatalf("DispatchEvent: %v", err)
		}
	}

	if got := run(t, vm, "seen.length").ToInteger(); got != 6 {
		t.Fatalf("listener invocations = %d, want 6", got)
	}
	if !run(t, vm, "seen[0] === seen[1] && seen[2] === seen[3]").ToBoolean() {
		t.Error("listeners within one dispatch should share the reflection")
	}
	if run(t, vm, "seen[1] === seen[2] || seen[3] === seen[4]").ToBoolean() {
		t.Error("a later dispatch reused a previous dispatch's reflection")
	}
}

func TestWrapperSharedAcrossListeners(t *testing.T) {
	vm, _, _ := newTestTarget(t)
	run(t, vm, `
		var same = false;
		var first = null;
		target.addEventListener('x', function(e) { first = e; e.marker = 1; });
		target.addEventListener('x', function(e) { same = (e === first) && (e.marker === 1); });
		target.dispatchEvent(new Event('x'));
	`)
	if !run(t, vm, "same").ToBoolean() {
		t.Error("listeners in one dispatch should share the wrapper object")
	}
}
