package chifir

import (
	"reflect"

	"github.com/artie-owlet/chifir/internal/brew"
	"github.com/artie-owlet/chifir/internal/deferred"
	"github.com/artie-owlet/chifir/internal/diagnostic"
)

// Chain is an immutable assertion chain over a value. Every operation
// returns a new Chain or panics with an *AssertionError. The zero Chain
// holds nil with an empty context.
type Chain struct {
	grafted[Chain]
	value any
	ctx   brew.Stack
}

func newChain(value any, ctx brew.Stack) Chain {
	c := Chain{value: value, ctx: ctx}
	c.grafted = grafted[Chain]{apply: c.apply}
	return c
}

func (c Chain) apply(op string, step brew.Step) Chain {
	origin := diagnostic.Capture(op)
	v, ctx, err := step(brew.New(c.value, c.ctx, origin))
	if err != nil {
		panic(err)
	}
	return newChain(v, ctx)
}

// Value returns the value the chain holds.
func (c Chain) Value() any {
	return c.value
}

// ContextDepth returns how many Prop navigations Context can undo.
func (c Chain) ContextDepth() int {
	return c.ctx.Len()
}

// Prop asserts the value has the own property key and returns a chain over
// it. The current value is pushed onto the context.
func (c Chain) Prop(key any) Chain {
	return c.apply("Prop", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Prop(key)
	})
}

// Context returns a chain over the value the last Prop navigated from.
func (c Chain) Context() Chain {
	return c.apply("Context", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Context()
	})
}

// InstanceOf asserts the value's dynamic type is t, or implements t when t
// is an interface type.
func (c Chain) InstanceOf(t reflect.Type) Chain {
	return c.apply("InstanceOf", func(b brew.Brew) (any, brew.Stack, error) {
		return b.InstanceOf(t)
	})
}

// TypeOf asserts the value's kind is kind. The kind of nil is reflect.Invalid.
func (c Chain) TypeOf(kind reflect.Kind) Chain {
	return c.apply("TypeOf", func(b brew.Brew) (any, brew.Stack, error) {
		return b.TypeOf(kind)
	})
}

// Eventually returns an asynchronous chain over the awaitable value with an
// empty context. It panics at once if the value is not awaitable.
func (c Chain) Eventually() *AsyncChain {
	f, ok := deferred.Adapt(c.value)
	if !ok {
		panic(diagnostic.New(diagnostic.Capture("Eventually"), notAwaitable, c.value, ""))
	}
	return fromFuture(f)
}
