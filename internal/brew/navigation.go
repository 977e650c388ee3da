package brew

import (
	"fmt"
	"reflect"

	"github.com/artie-owlet/chifir/internal/render"
)

// objectKinds are the kinds Prop can navigate into.
var objectKinds = []reflect.Kind{reflect.Map, reflect.Struct, reflect.Slice, reflect.Array}

// Prop reads the own property key and pushes the current value onto the
// context. Own properties are exported fields declared directly on the
// struct (not promoted from an embedded one), present map keys and in-range
// indexes.
func (b Brew) Prop(key any) (any, Stack, error) {
	obj, err := b.Is(func(v any) bool {
		k := derefKind(v)
		for _, want := range objectKinds {
			if k == want {
				return true
			}
		}
		return false
	}, typeLabel(objectKinds))
	if err != nil {
		return nil, nil, err
	}
	return b.brew(obj).Assert(func(v any, ctx Stack) (any, Stack, error) {
		x, ok := ownProp(v, key)
		if !ok {
			return nil, nil, errCheckFailed
		}
		return x, ctx.Push(v), nil
	}, "Expected to have the "+render.Key(key)+" property")
}

// Context returns to the value the last Prop navigated from.
func (b Brew) Context() (any, Stack, error) {
	return b.Assert(func(_ any, ctx Stack) (any, Stack, error) {
		top, rest, ok := ctx.Pop()
		if !ok {
			return nil, nil, errCheckFailed
		}
		return top, rest, nil
	}, "The value has no context")
}

// InstanceOf fails unless the value's dynamic type is t, or implements t
// when t is an interface.
func (b Brew) InstanceOf(t reflect.Type) (any, Stack, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("%w: nil type", ErrBadArguments)
	}
	v, err := b.Is(func(v any) bool {
		if v == nil {
			return false
		}
		vt := reflect.TypeOf(v)
		if t.Kind() == reflect.Interface {
			return vt.Implements(t)
		}
		return vt == t
	}, "Expected to be instance of "+t.String())
	if err != nil {
		return nil, nil, err
	}
	return v, b.ctx, nil
}

// TypeOf fails unless the value's kind is exactly kind.
func (b Brew) TypeOf(kind reflect.Kind) (any, Stack, error) {
	v, err := b.IsTypeOf(kind)
	if err != nil {
		return nil, nil, err
	}
	return v, b.ctx, nil
}

func derefKind(v any) reflect.Kind {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Kind()
}

func ownProp(v any, key any) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return nil, false
		}
		x := rv.MapIndex(kv)
		if !x.IsValid() {
			return nil, false
		}
		return x.Interface(), true
	case reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return nil, false
		}
		sf, found := rv.Type().FieldByName(name)
		if !found || len(sf.Index) != 1 || !sf.IsExported() {
			return nil, false
		}
		return rv.Field(sf.Index[0]).Interface(), true
	case reflect.Slice, reflect.Array:
		i, ok := toIndex(key)
		if !ok || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}
