// Package chifir provides fluent assertion chains.
//
// A chain wraps a value and exposes checks that each return a new chain,
// so assertions read left to right:
//
//	chifir.Expect(resp).Prop("Status").Eq(200).Context().Prop("Body").Exist()
//
// A failing check on a Chain panics with an *AssertionError carrying the
// failed clause, the offending value and the call site of the check. Catch
// and Require turn that panic back into an error or a test failure.
//
// ExpectAsync and Chain.Eventually build an AsyncChain over an awaitable:
// a value with a method Await(context.Context) (X, error), or a channel.
// Its checks are scheduled in order and reported by Await.
package chifir

import (
	"errors"
	"testing"

	"github.com/artie-owlet/chifir/internal/deferred"
	"github.com/artie-owlet/chifir/internal/diagnostic"
	"github.com/artie-owlet/chifir/internal/render"
)

const notAwaitable = "Not awaitable"

// Expect starts a chain over value with an empty context.
func Expect(value any) Chain {
	return newChain(value, nil)
}

// ExpectAsync starts an asynchronous chain over an awaitable. It panics with
// an *AssertionError if awaitable is not awaitable.
func ExpectAsync(awaitable any) *AsyncChain {
	f, ok := deferred.Adapt(awaitable)
	if !ok {
		panic(diagnostic.New(diagnostic.Capture("ExpectAsync"), notAwaitable, awaitable, ""))
	}
	return fromFuture(f)
}

// Catch runs fn and returns the *AssertionError it panicked with, or nil.
// Any other panic is re-raised.
func Catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			var ae *AssertionError
			if errors.As(e, &ae) {
				err = ae
				return
			}
		}
		panic(r)
	}()
	fn()
	return nil
}

// Require runs fn and fails t immediately if an assertion in it fails.
func Require(t testing.TB, fn func()) {
	t.Helper()
	err := Catch(fn)
	if err == nil {
		return
	}
	ae, _ := diagnostic.As(err)
	msg := ae.Stack
	if msg == "" {
		msg = ae.Message
	}
	if ae.Details != "" {
		msg += "\n" + ae.Details
	}
	t.Fatalf("%s\nactual: %s", msg, render.Value(ae.Actual))
}
