package brew

import (
	"fmt"
	"math"
	"reflect"
	"regexp"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/artie-owlet/chifir/internal/render"
)

// Deep equality is strict: types must match, unexported fields count and
// NaN equals NaN.
var equalOpts = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

func deepEqual(a, b any) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Eq fails unless the value is deeply equal to expected.
func (b Brew) Eq(expected any) (any, Stack, error) {
	return b.Assert(func(v any, ctx Stack) (any, Stack, error) {
		if !deepEqual(v, expected) {
			return nil, nil, failWith(cmp.Diff(expected, v, equalOpts...))
		}
		return v, ctx, nil
	}, "Expected to be equal to "+render.Value(expected))
}

// Ne fails if the value is deeply equal to cmpValue.
func (b Brew) Ne(cmpValue any) (any, Stack, error) {
	return b.Assert(func(v any, ctx Stack) (any, Stack, error) {
		if deepEqual(v, cmpValue) {
			return nil, nil, errCheckFailed
		}
		return v, ctx, nil
	}, "Expected to be not equal to "+render.Value(cmpValue))
}

// SameAs fails unless the value is identical to expected.
func (b Brew) SameAs(expected any) (any, Stack, error) {
	v, err := b.Is(func(v any) bool { return same(v, expected) },
		"Expected to be the same as "+render.Value(expected))
	if err != nil {
		return nil, nil, err
	}
	return v, b.ctx, nil
}

// same reports identity: reference kinds must point at the same thing and
// comparable values must be ==, with NaN same as NaN and +0 distinct from -0.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len() && ra.Cap() == rb.Cap()
	case reflect.Float32, reflect.Float64:
		x, y := ra.Float(), rb.Float()
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y && math.Signbit(x) == math.Signbit(y)
	}
	if !ra.Comparable() {
		return false
	}
	return ra.Equal(rb)
}

// Lt fails unless the value is strictly less than n.
func (b Brew) Lt(n any) (any, Stack, error) {
	return b.order(n, "Expected to be strictly less than ", func(c int) bool { return c < 0 })
}

// Gt fails unless the value is strictly greater than n.
func (b Brew) Gt(n any) (any, Stack, error) {
	return b.order(n, "Expected to be strictly greater than ", func(c int) bool { return c > 0 })
}

// Le fails unless the value is less than or equal to n.
func (b Brew) Le(n any) (any, Stack, error) {
	return b.order(n, "Expected to be less than or equal to ", func(c int) bool { return c <= 0 })
}

// Ge fails unless the value is greater than or equal to n.
func (b Brew) Ge(n any) (any, Stack, error) {
	return b.order(n, "Expected to be greater than or equal to ", func(c int) bool { return c >= 0 })
}

func (b Brew) order(n any, clause string, holds func(c int) bool) (any, Stack, error) {
	v, err := b.Is(isOrderable, "Expected to be a number, a string or a time")
	if err != nil {
		return nil, nil, err
	}
	return b.brew(v).Assert(func(v any, ctx Stack) (any, Stack, error) {
		c, ordered, err := compare(v, n)
		if err != nil {
			return nil, nil, err
		}
		if !ordered || !holds(c) {
			return nil, nil, errCheckFailed
		}
		return v, ctx, nil
	}, clause+render.Value(n))
}

// Match fails unless the value is a string matching re.
func (b Brew) Match(re *regexp.Regexp) (any, Stack, error) {
	if re == nil {
		return nil, nil, fmt.Errorf("%w: nil regexp", ErrBadArguments)
	}
	s, err := b.IsTypeOf(reflect.String)
	if err != nil {
		return nil, nil, err
	}
	v, err := b.brew(s).Is(func(v any) bool {
		return re.MatchString(reflect.ValueOf(v).String())
	}, "Expected to match "+render.Value(re))
	if err != nil {
		return nil, nil, err
	}
	return v, b.ctx, nil
}

// Throws calls the value with args and fails unless the call throws. Go code
// throws by panicking or by returning a non-nil error as its last result.
// The thrown value becomes the new value with an empty context.
func (b Brew) Throws(args ...any) (any, Stack, error) {
	fn, err := b.Is(isCallable, "Expected to be callable")
	if err != nil {
		return nil, nil, err
	}
	return b.brew(fn).Assert(func(v any, ctx Stack) (any, Stack, error) {
		rv := reflect.ValueOf(v)
		in, err := callArgs(rv.Type(), ctx, args)
		if err != nil {
			return nil, nil, err
		}
		if thrown, ok := invoke(rv, in); ok {
			return thrown, nil, nil
		}
		return nil, nil, errCheckFailed
	}, "Expected to throw")
}

// PropThrows fails unless reading key from the value throws.
// The thrown value becomes the new value with an empty context.
func (b Brew) PropThrows(key any) (any, Stack, error) {
	return b.Assert(func(v any, _ Stack) (any, Stack, error) {
		if thrown, ok := catch(func() { access(v, key) }); ok {
			return thrown, nil, nil
		}
		return nil, nil, errCheckFailed
	}, "Expected to throw on accessing the "+render.Key(key)+" property")
}
