package chifir

import (
	"context"
	"errors"
	"reflect"

	"github.com/artie-owlet/chifir/internal/brew"
	"github.com/artie-owlet/chifir/internal/deferred"
	"github.com/artie-owlet/chifir/internal/diagnostic"
	"github.com/artie-owlet/chifir/internal/logging"
)

// pair is what an asynchronous chain eventually holds.
type pair struct {
	value any
	ctx   brew.Stack
}

// AsyncChain mirrors Chain over a value that is not available yet.
//
// Operations never block: each one captures its call site, schedules its
// check to run once the previous step settles and returns a new AsyncChain.
// Failures surface from Await, Resolves or a later Rejects. The zero
// AsyncChain is already resolved to nil.
type AsyncChain struct {
	grafted[*AsyncChain]
	pending *deferred.Future[pair]
}

func newAsyncChain(f *deferred.Future[pair]) *AsyncChain {
	c := &AsyncChain{pending: f}
	c.grafted = grafted[*AsyncChain]{apply: c.apply}
	return c
}

func fromFuture(f *deferred.Future[any]) *AsyncChain {
	return newAsyncChain(deferred.Then(f, func(v any) (pair, error) {
		return pair{value: v}, nil
	}, nil))
}

// future returns the pending pair. The zero AsyncChain, or a nil one, holds
// nil with an empty context.
func (c *AsyncChain) future() *deferred.Future[pair] {
	if c == nil || c.pending == nil {
		return deferred.Resolved(pair{})
	}
	return c.pending
}

func (c *AsyncChain) apply(op string, step brew.Step) *AsyncChain {
	origin := diagnostic.Capture(op).Deferred()
	logging.AsyncDebug("scheduled %s", origin)
	return newAsyncChain(deferred.Then(c.future(), func(p pair) (pair, error) {
		v, ctx, err := step(brew.New(p.value, p.ctx, origin))
		if err != nil {
			return pair{}, err
		}
		return pair{value: v, ctx: ctx}, nil
	}, nil))
}

// Prop is the asynchronous counterpart of Chain.Prop.
func (c *AsyncChain) Prop(key any) *AsyncChain {
	return c.apply("Prop", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Prop(key)
	})
}

// Context is the asynchronous counterpart of Chain.Context.
func (c *AsyncChain) Context() *AsyncChain {
	return c.apply("Context", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Context()
	})
}

// InstanceOf is the asynchronous counterpart of Chain.InstanceOf.
func (c *AsyncChain) InstanceOf(t reflect.Type) *AsyncChain {
	return c.apply("InstanceOf", func(b brew.Brew) (any, brew.Stack, error) {
		return b.InstanceOf(t)
	})
}

// TypeOf is the asynchronous counterpart of Chain.TypeOf.
func (c *AsyncChain) TypeOf(kind reflect.Kind) *AsyncChain {
	return c.apply("TypeOf", func(b brew.Brew) (any, brew.Stack, error) {
		return b.TypeOf(kind)
	})
}

// Resolves waits for the chain and fails with "Expected to resolve" if it
// rejected. The failure's Actual is the rejection reason.
func (c *AsyncChain) Resolves(ctx context.Context) (Chain, error) {
	origin := diagnostic.Capture("Resolves").Deferred()
	p, err := c.future().Await(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Chain{}, err
		}
		return Chain{}, diagnostic.New(origin, "Expected to resolve", err, "")
	}
	return newChain(p.value, p.ctx), nil
}

// Rejects asserts the chain rejects and continues with the rejection reason
// and an empty context. If the chain resolves instead, cleanup (when not
// nil) is called once with the resolved value before the chain fails with
// "Expected to reject".
func (c *AsyncChain) Rejects(cleanup func(value any)) *AsyncChain {
	origin := diagnostic.Capture("Rejects").Deferred()
	logging.AsyncDebug("scheduled %s", origin)
	return newAsyncChain(deferred.Then(c.future(), func(p pair) (pair, error) {
		if cleanup != nil {
			cleanup(p.value)
		}
		return pair{}, diagnostic.New(origin, "Expected to reject", p.value, "")
	}, func(reason error) (pair, error) {
		return pair{value: reason}, nil
	}))
}

// Await blocks until every scheduled step has settled and returns a Chain
// over the result, or the first failure unchanged. A panic raised inside a
// step is re-raised here. Cancelling ctx abandons the wait only.
func (c *AsyncChain) Await(ctx context.Context) (Chain, error) {
	p, err := c.future().Await(ctx)
	if err != nil {
		return Chain{}, err
	}
	return newChain(p.value, p.ctx), nil
}

// Value waits for the chain and returns the value it settled with.
func (c *AsyncChain) Value(ctx context.Context) (any, error) {
	p, err := c.future().Await(ctx)
	if err != nil {
		return nil, err
	}
	return p.value, nil
}
