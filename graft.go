package chifir

import (
	"regexp"

	"github.com/artie-owlet/chifir/internal/brew"
)

// grafted declares the existence and value operations once for every chain
// type. A chain embeds grafted instantiated with its own type and supplies
// apply, which runs the step against the node's value and context and wraps
// the outcome in a new chain of the same type.
type grafted[C any] struct {
	apply func(op string, step brew.Step) C
}

type applier[C any] interface {
	apply(op string, step brew.Step) C
}

// run falls back to the zero chain, which holds nil, when the embedding
// chain was not built by Expect or ExpectAsync.
func (g grafted[C]) run(op string, step brew.Step) C {
	if g.apply != nil {
		return g.apply(op, step)
	}
	var zero C
	return any(zero).(applier[C]).apply(op, step)
}

// Exist asserts the value is not nil.
func (g grafted[C]) Exist() C {
	return g.run("Exist", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Exist()
	})
}

// Eq asserts the value is deeply equal to expected.
func (g grafted[C]) Eq(expected any) C {
	return g.run("Eq", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Eq(expected)
	})
}

// Ne asserts the value is not deeply equal to cmpValue.
func (g grafted[C]) Ne(cmpValue any) C {
	return g.run("Ne", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Ne(cmpValue)
	})
}

// SameAs asserts the value is identical to expected: the same reference for
// pointers, maps, slices, channels and funcs, == for everything else.
func (g grafted[C]) SameAs(expected any) C {
	return g.run("SameAs", func(b brew.Brew) (any, brew.Stack, error) {
		return b.SameAs(expected)
	})
}

// Lt asserts the value is strictly less than n.
func (g grafted[C]) Lt(n any) C {
	return g.run("Lt", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Lt(n)
	})
}

// Gt asserts the value is strictly greater than n.
func (g grafted[C]) Gt(n any) C {
	return g.run("Gt", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Gt(n)
	})
}

// Le asserts the value is less than or equal to n.
func (g grafted[C]) Le(n any) C {
	return g.run("Le", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Le(n)
	})
}

// Ge asserts the value is greater than or equal to n.
func (g grafted[C]) Ge(n any) C {
	return g.run("Ge", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Ge(n)
	})
}

// Match asserts the value is a string matching re.
func (g grafted[C]) Match(re *regexp.Regexp) C {
	return g.run("Match", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Match(re)
	})
}

// Throws asserts that calling the value with args panics or returns a
// non-nil error. The returned chain wraps what was thrown.
func (g grafted[C]) Throws(args ...any) C {
	return g.run("Throws", func(b brew.Brew) (any, brew.Stack, error) {
		return b.Throws(args...)
	})
}

// PropThrows asserts that reading key from the value panics.
// The returned chain wraps what was thrown.
func (g grafted[C]) PropThrows(key any) C {
	return g.run("PropThrows", func(b brew.Brew) (any, brew.Stack, error) {
		return b.PropThrows(key)
	})
}
