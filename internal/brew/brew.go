// Package brew implements the check protocol and the capability groups that
// chains are built from.
//
// A Brew is a transient capability instance: the value under test, its
// navigation context and the origin of the operation being performed. Every
// capability runs one or more checks through Assert, which converts the
// internal check-failed signal into an assertion diagnostic and passes any
// other error through untouched.
package brew

import (
	"errors"
	"reflect"

	"github.com/artie-owlet/chifir/internal/diagnostic"
	"github.com/artie-owlet/chifir/internal/render"
)

var (
	// ErrIncomparable is returned when an ordering operand cannot be compared
	// with the value. It is a type error, never an assertion failure.
	ErrIncomparable = errors.New("incomparable operands")

	// ErrBadArguments is returned when an operation is given arguments it
	// cannot use, e.g. a call whose arity does not match the function.
	ErrBadArguments = errors.New("bad arguments")

	// ErrNilAccess is the panic value of reading a key through nil.
	ErrNilAccess = errors.New("nil dereference")

	// ErrOutOfRange is the panic value of reading an index past the end.
	ErrOutOfRange = errors.New("index out of range")
)

// checkFailed is the internal signal a Check returns to fail.
type checkFailed struct {
	details string
}

func (c *checkFailed) Error() string { return "check failed" }

var errCheckFailed error = &checkFailed{}

func failWith(details string) error {
	return &checkFailed{details: details}
}

// Check inspects a value and its context and returns the next pair.
type Check func(v any, ctx Stack) (any, Stack, error)

// Step is one chain operation over a Brew.
type Step func(b Brew) (any, Stack, error)

// Brew holds what a capability needs to run its checks.
type Brew struct {
	value  any
	ctx    Stack
	origin diagnostic.Origin
}

// New returns a Brew over value and ctx reporting failures at origin.
func New(value any, ctx Stack, origin diagnostic.Origin) Brew {
	return Brew{value: value, ctx: ctx, origin: origin}
}

// Value returns the value under test.
func (b Brew) Value() any { return b.value }

// Stack returns the navigation context.
func (b Brew) Stack() Stack { return b.ctx }

func (b Brew) brew(v any) Brew {
	return Brew{value: v, ctx: b.ctx, origin: b.origin}
}

// Assert runs check. The check-failed signal and assertion diagnostics become
// a new diagnostic labelled with label; other errors are returned unchanged.
func (b Brew) Assert(check Check, label string) (any, Stack, error) {
	v, ctx, err := check(b.value, b.ctx)
	if err == nil {
		return v, ctx, nil
	}

	var cf *checkFailed
	if errors.As(err, &cf) {
		return nil, nil, diagnostic.New(b.origin, label, b.value, cf.details)
	}
	if _, ok := diagnostic.As(err); ok {
		return nil, nil, diagnostic.New(b.origin, label, b.value, "")
	}
	return nil, nil, err
}

// Is fails unless pred holds and passes the value through otherwise.
func (b Brew) Is(pred func(v any) bool, label string) (any, error) {
	v, _, err := b.Assert(func(v any, ctx Stack) (any, Stack, error) {
		if !pred(v) {
			return nil, nil, errCheckFailed
		}
		return v, ctx, nil
	}, label)
	return v, err
}

// IsTypeOf fails unless the value's kind is one of kinds.
func (b Brew) IsTypeOf(kinds ...reflect.Kind) (any, error) {
	return b.Is(func(v any) bool {
		k := kindOf(v)
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}, typeLabel(kinds))
}

func kindOf(v any) reflect.Kind {
	return reflect.ValueOf(v).Kind()
}

// kindName names a kind for labels; the kind of an untyped nil is "nil".
func kindName(k reflect.Kind) string {
	if k == reflect.Invalid {
		return "nil"
	}
	return k.String()
}

func typeLabel(kinds []reflect.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = kindName(k)
	}
	return "Expected to be type of " + render.JoinOr(names)
}
