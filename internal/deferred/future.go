// Package deferred implements the single-shot future backing asynchronous chains.
//
// A Future settles exactly once: fulfilled with a value, rejected with an
// error, or panicked with the value passed to panic. Continuations registered
// with Then run on their own goroutine after the source settles, so a chain of
// Then calls settles strictly in registration order. Nothing retries and
// nothing times out: a future that never settles keeps its continuations
// pending forever.
package deferred

import (
	"context"
	"errors"
	"sync"
)

// ErrGoexit rejects a future whose callback called runtime.Goexit.
var ErrGoexit = errors.New("deferred: callback called runtime.Goexit")

type state int

const (
	pending state = iota
	fulfilled
	rejected
	panicked
)

// Future is a value that becomes available later.
type Future[T any] struct {
	done     chan struct{}
	once     sync.Once
	state    state
	val      T
	err      error
	panicVal any
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// New returns a pending future with its settle functions.
// Only the first call to either function has any effect.
func New[T any]() (*Future[T], func(T), func(error)) {
	f := newFuture[T]()
	return f, f.fulfil, f.reject
}

// Resolved returns a future already fulfilled with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.fulfil(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.reject(err)
	return f
}

// Go runs fn on a new goroutine and settles the future with its outcome.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go f.run(fn)
	return f
}

func (f *Future[T]) settle(s state, v T, err error, p any) {
	f.once.Do(func() {
		f.state = s
		f.val = v
		f.err = err
		f.panicVal = p
		close(f.done)
	})
}

func (f *Future[T]) fulfil(v T) {
	f.settle(fulfilled, v, nil, nil)
}

func (f *Future[T]) reject(err error) {
	var zero T
	f.settle(rejected, zero, err, nil)
}

func (f *Future[T]) run(fn func() (T, error)) {
	returned := false
	defer func() {
		if returned {
			return
		}
		var zero T
		if p := recover(); p != nil {
			f.settle(panicked, zero, nil, p)
			return
		}
		f.settle(rejected, zero, ErrGoexit, nil)
	}()

	v, err := fn()
	returned = true
	if err != nil {
		f.reject(err)
		return
	}
	f.fulfil(v)
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done.
// A panicked future re-panics in the caller with the original value.
// Cancelling ctx abandons only this wait; the future keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if !f.Settled() {
		select {
		case <-f.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	switch f.state {
	case panicked:
		panic(f.panicVal)
	case rejected:
		var zero T
		return zero, f.err
	default:
		return f.val, nil
	}
}

// Then registers continuations on f and returns the future of their result.
// A nil onRejected passes the rejection through; a panicked source skips
// both callbacks and panics the result with the same value.
func Then[T, U any](f *Future[T], onFulfilled func(T) (U, error), onRejected func(error) (U, error)) *Future[U] {
	next := newFuture[U]()
	go func() {
		<-f.done
		switch f.state {
		case panicked:
			var zero U
			next.settle(panicked, zero, nil, f.panicVal)
		case rejected:
			if onRejected == nil {
				next.reject(f.err)
				return
			}
			next.run(func() (U, error) { return onRejected(f.err) })
		default:
			next.run(func() (U, error) { return onFulfilled(f.val) })
		}
	}()
	return next
}
