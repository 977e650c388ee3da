package brew

import (
	"fmt"
	"reflect"
	"strconv"
)

var errorType = reflect.TypeFor[error]()

func isCallable(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// callArgs converts args to call values for a function of type t. When the
// function takes one parameter more than given and the context head fits the
// first parameter, the head is passed as the receiver.
func callArgs(t reflect.Type, ctx Stack, args []any) ([]reflect.Value, error) {
	in := args
	if head, ok := ctx.Top(); ok && head != nil && !t.IsVariadic() && t.NumIn() == len(args)+1 &&
		reflect.TypeOf(head).AssignableTo(t.In(0)) {
		in = append([]any{head}, args...)
	}

	switch {
	case t.IsVariadic() && len(in) < t.NumIn()-1:
		return nil, fmt.Errorf("%w: %s needs at least %d arguments, got %d", ErrBadArguments, t, t.NumIn()-1, len(in))
	case !t.IsVariadic() && len(in) != t.NumIn():
		return nil, fmt.Errorf("%w: %s needs %d arguments, got %d", ErrBadArguments, t, t.NumIn(), len(in))
	}

	vals := make([]reflect.Value, len(in))
	for i, a := range in {
		pt := paramType(t, i)
		v, err := argValue(a, pt)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrBadArguments, i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

func argValue(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch pt.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", pt)
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if isNumberKind(av.Kind()) && isNumberKind(pt.Kind()) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", av.Type(), pt)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// invoke calls fn and reports what it threw, if anything.
func invoke(fn reflect.Value, in []reflect.Value) (thrown any, ok bool) {
	var out []reflect.Value
	if thrown, ok := catch(func() { out = fn.Call(in) }); ok {
		return thrown, true
	}
	if err := lastError(out); err != nil {
		return err, true
	}
	return nil, false
}

func lastError(out []reflect.Value) error {
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.Type() != errorType || last.IsNil() {
		return nil
	}
	return last.Interface().(error)
}

// catch runs fn and returns the value it panicked with.
func catch(fn func()) (thrown any, ok bool) {
	returned := false
	defer func() {
		if returned {
			return
		}
		thrown, ok = recover(), true
	}()
	fn()
	returned = true
	return nil, false
}

// access reads key from v the way a property read would, panicking where
// the read itself fails. A niladic method named key acts as a getter.
func access(v any, key any) any {
	if v == nil {
		panic(fmt.Errorf("%w: reading %v", ErrNilAccess, key))
	}
	rv := reflect.ValueOf(v)
	if name, ok := key.(string); ok {
		if m := rv.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 {
			out := m.Call(nil)
			if err := lastError(out); err != nil {
				panic(err)
			}
			if len(out) == 0 {
				return nil
			}
			return out[0].Interface()
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			panic(fmt.Errorf("%w: reading %v", ErrNilAccess, key))
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return nil
		}
		if x := rv.MapIndex(kv); x.IsValid() {
			return x.Interface()
		}
	case reflect.Struct:
		if name, ok := key.(string); ok {
			if sf, found := rv.Type().FieldByName(name); found && sf.IsExported() {
				return rv.FieldByIndex(sf.Index).Interface()
			}
		}
	case reflect.Slice, reflect.Array, reflect.String:
		if i, ok := toIndex(key); ok {
			if i < 0 || i >= rv.Len() {
				panic(fmt.Errorf("%w: index %d with length %d", ErrOutOfRange, i, rv.Len()))
			}
			return rv.Index(i).Interface()
		}
	}
	return nil
}

func mapKey(kt reflect.Type, key any) (reflect.Value, bool) {
	if key == nil {
		return reflect.Value{}, false
	}
	kv := reflect.ValueOf(key)
	if !kv.Comparable() {
		return reflect.Value{}, false
	}
	if kv.Type().AssignableTo(kt) {
		return kv, true
	}
	if isNumberKind(kv.Kind()) && isNumberKind(kt.Kind()) {
		return kv.Convert(kt), true
	}
	if kv.Kind() == reflect.String && kt.Kind() == reflect.String {
		return kv.Convert(kt), true
	}
	return reflect.Value{}, false
}

func toIndex(key any) (int, bool) {
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.String:
		i, err := strconv.Atoi(rv.String())
		return i, err == nil
	}
	return 0, false
}
