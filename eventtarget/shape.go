package eventtarget

import (
	"fmt"
	"reflect"
	"sync"
)

// A shape memoizes the reflection work for one raw-event type: which exported
// fields and methods it has and how to reach them. Go has no prototype chain,
// so the unit of sharing is the dynamic type; two raw events of the same type
// share one shape, the way two same-prototype events share one generated
// wrapper class in a DOM implementation. Shapes are built once and never
// invalidated.
type shape struct {
	rtype   reflect.Type
	fields  map[string]fieldInfo
	methods map[string]methodInfo
}

type fieldInfo struct {
	name  string
	index []int
}

type methodInfo struct {
	name  string
	index int
}

var shapes sync.Map // reflect.Type -> *shape

// shapeOf returns the cached shape for a raw event's type. Map raw events are
// purely dynamic bags and have no shape.
func shapeOf(t reflect.Type) *shape {
	if t == nil || t.Kind() == reflect.Map {
		return nil
	}
	if cached, ok := shapes.Load(t); ok {
		return cached.(*shape)
	}
	sh := buildShape(t)
	actual, _ := shapes.LoadOrStore(t, sh)
	return actual.(*shape)
}

func buildShape(t reflect.Type) *shape {
	sh := &shape{
		rtype:   t,
		fields:  make(map[string]fieldInfo),
		methods: make(map[string]methodInfo),
	}

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if m.PkgPath != "" {
			continue
		}
		addShapeKey(sh.methods, m.Name, methodInfo{name: m.Name, index: m.Index})
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		collectFields(sh, st, map[reflect.Type]bool{})
	}
	return sh
}

// collectFields walks a struct type level by level so that, as with promoted
// fields in ordinary Go code, a shallower field wins over a deeper one with
// the same name.
func collectFields(sh *shape, root reflect.Type, seen map[reflect.Type]bool) {
	type node struct {
		t     reflect.Type
		index []int
	}
	level := []node{{t: root}}
	seen[root] = true

	for len(level) > 0 {
		var next []node
		for _, n := range level {
			for i := 0; i < n.t.NumField(); i++ {
				f := n.t.Field(i)
				index := append(append([]int(nil), n.index...), i)
				if f.Anonymous {
					ft := f.Type
					if ft.Kind() == reflect.Pointer {
						ft = ft.Elem()
					}
					if ft.Kind() == reflect.Struct && !seen[ft] {
						seen[ft] = true
						next = append(next, node{t: ft, index: index})
						continue
					}
				}
				if f.PkgPath != "" {
					continue
				}
				addShapeKey(sh.fields, f.Name, fieldInfo{name: f.Name, index: index})
			}
		}
		level = next
	}
}

// addShapeKey registers an entry under its exported name and, when free, a
// lowercase-first alias so host layers can use DOM-style names ("error" for
// an Error field).
func addShapeKey[T any](m map[string]T, name string, info T) {
	if _, taken := m[name]; !taken {
		m[name] = info
	}
	if alias := lowerFirst(name); alias != name {
		if _, taken := m[alias]; !taken {
			m[alias] = info
		}
	}
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

// fieldNames returns the exported field names of the shape, without aliases.
func (sh *shape) fieldNames() []string {
	names := make([]string, 0, len(sh.fields))
	for key, info := range sh.fields {
		if key == info.name {
			names = append(names, info.name)
		}
	}
	return names
}

// field reads a named field from a raw value of this shape. ok is false when
// the shape has no such field or a nil embedded pointer interrupts the path.
func (sh *shape) field(raw any, name string) (value any, ok bool) {
	if sh == nil {
		return nil, false
	}
	info, found := sh.fields[name]
	if !found {
		return nil, false
	}
	v, ok := sh.walk(reflect.ValueOf(raw), info.index)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// setField writes a named field on a raw value. The raw value must have been
// dispatched as a pointer for its fields to be addressable.
func (sh *shape) setField(raw any, name string, value any) error {
	if sh == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	info, found := sh.fields[name]
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: field %q", ErrImmutableRaw, name)
	}
	fv, ok := sh.walk(v, info.index)
	if !ok || !fv.CanSet() {
		return fmt.Errorf("%w: field %q", ErrImmutableRaw, name)
	}
	return assign(fv, value, "field "+info.name)
}

// call invokes a named method on a raw value and returns its results.
func (sh *shape) call(raw any, name string, args []any) ([]any, error) {
	if sh == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	info, found := sh.methods[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	m := reflect.ValueOf(raw).Method(info.index)
	mt := m.Type()

	fixed := mt.NumIn()
	if mt.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("method %s wants at least %d args, got %d", info.name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("method %s wants %d args, got %d", info.name, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if i < fixed {
			want = mt.In(i)
		} else {
			want = mt.In(fixed).Elem()
		}
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		av := reflect.ValueOf(arg)
		switch {
		case av.Type().AssignableTo(want):
			in[i] = av
		case av.Type().ConvertibleTo(want):
			in[i] = av.Convert(want)
		default:
			return nil, fmt.Errorf("method %s: arg %d is %s, want %s", info.name, i, av.Type(), want)
		}
	}

	out := m.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// walk resolves an index path, dereferencing pointers and reporting failure
// on nil embedded pointers instead of panicking.
func (sh *shape) walk(v reflect.Value, index []int) (reflect.Value, bool) {
	for _, i := range index {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		v = v.Field(i)
	}
	return v, true
}

func assign(dst reflect.Value, value any, what string) error {
	if value == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return fmt.Errorf("cannot assign nil to %s (%s)", what, dst.Type())
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(dst.Type()):
		dst.Set(v)
	case v.Type().ConvertibleTo(dst.Type()):
		dst.Set(v.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s (%s)", v.Type(), what, dst.Type())
	}
	return nil
}
