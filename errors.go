package chifir

import (
	"github.com/artie-owlet/chifir/internal/brew"
	"github.com/artie-owlet/chifir/internal/deferred"
	"github.com/artie-owlet/chifir/internal/diagnostic"
)

// AssertionError is the failure every check reports.
type AssertionError = diagnostic.AssertionError

var (
	// ErrAssertionFailed matches every *AssertionError with errors.Is.
	ErrAssertionFailed = diagnostic.ErrAssertionFailed

	// ErrIncomparable is raised when an ordering check is given an operand
	// of a different category than the value.
	ErrIncomparable = brew.ErrIncomparable
	// ErrBadArguments is raised when Throws cannot call the value with the
	// given arguments, or a check is given a nil operand it cannot use.
	ErrBadArguments = brew.ErrBadArguments
	// ErrNilAccess is thrown by property reads through a nil pointer.
	ErrNilAccess = brew.ErrNilAccess
	// ErrOutOfRange is thrown by index reads past the end.
	ErrOutOfRange = brew.ErrOutOfRange

	// ErrChannelClosed rejects a chain over a channel closed without a value.
	ErrChannelClosed = deferred.ErrChannelClosed
)

// As reports whether err is or wraps an *AssertionError and returns it.
func As(err error) (*AssertionError, bool) {
	return diagnostic.As(err)
}
