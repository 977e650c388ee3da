package brew

import "reflect"

// Exist fails if the value is nil, including a typed nil behind an interface.
func (b Brew) Exist() (any, Stack, error) {
	v, err := b.Is(func(v any) bool { return !isNil(v) }, "Expected to be not nil")
	if err != nil {
		return nil, nil, err
	}
	return v, b.ctx, nil
}

// isNil checks if a value is nil, handling both untyped nil and typed nil
// (nil interface values with concrete types).
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
