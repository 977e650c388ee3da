package deferred

import (
	"context"
	"errors"
	"reflect"
)

// ErrChannelClosed rejects a future adapted from a channel that closed
// without delivering a value.
var ErrChannelClosed = errors.New("deferred: channel closed without a value")

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// IsAwaitable reports whether Adapt would accept v.
//
// A value is awaitable when it has a method Await(context.Context) (X, error)
// for any X, or when it is a channel that can be received from.
func IsAwaitable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if awaitMethod(rv).IsValid() {
		return true
	}
	return isRecvChan(rv)
}

// Adapt turns an awaitable into a Future[any]. ok is false for anything else.
// The Await method is called once with a background context.
func Adapt(v any) (f *Future[any], ok bool) {
	if v == nil {
		return nil, false
	}
	if fa, isFuture := v.(*Future[any]); isFuture && fa != nil {
		return fa, true
	}

	rv := reflect.ValueOf(v)
	if m := awaitMethod(rv); m.IsValid() {
		return Go(func() (any, error) {
			out := m.Call([]reflect.Value{reflect.ValueOf(context.Background())})
			var err error
			if e := out[1]; !e.IsNil() {
				err = e.Interface().(error)
			}
			return out[0].Interface(), err
		}), true
	}
	if isRecvChan(rv) {
		return Go(func() (any, error) {
			x, received := rv.Recv()
			if !received {
				return nil, ErrChannelClosed
			}
			return x.Interface(), nil
		}), true
	}
	return nil, false
}

func awaitMethod(rv reflect.Value) reflect.Value {
	if !rv.IsValid() {
		return reflect.Value{}
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return reflect.Value{}
		}
	}
	m := rv.MethodByName("Await")
	if !m.IsValid() {
		return reflect.Value{}
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.IsVariadic() || !contextType.AssignableTo(mt.In(0)) {
		return reflect.Value{}
	}
	if mt.NumOut() != 2 || mt.Out(1) != errorType {
		return reflect.Value{}
	}
	return m
}

func isRecvChan(rv reflect.Value) bool {
	return rv.Kind() == reflect.Chan && !rv.IsNil() && rv.Type().ChanDir()&reflect.RecvDir != 0
}
