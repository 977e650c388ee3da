// Package diagnostic builds the assertion failures surfaced by chains.
//
// A failure records the clause that failed, the actual value it failed on,
// and the call site of the failing operation. Synchronous operations capture
// the call site and build the error in one go; asynchronous operations
// capture an Origin eagerly and stitch it in when the continuation fails.
package diagnostic

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/artie-owlet/chifir/internal/logging"
)

// ErrAssertionFailed is the sentinel every AssertionError unwraps to.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError is a failed check.
type AssertionError struct {
	Op       string // operation that failed, e.g. "Eq"
	Message  string // fixed clause, e.g. `Expected to be equal to 13`
	Actual   any    // value the check ran against
	Details  string // optional extra lines, e.g. a diff
	Stack    string // message followed by the origin frames
	Deferred bool   // failed inside an async continuation
}

// Error returns the message, followed by details when present.
func (e *AssertionError) Error() string {
	if e == nil {
		return ErrAssertionFailed.Error()
	}
	if e.Details == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Details
}

// Unwrap returns the sentinel assertion error for errors.Is.
func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// As reports whether err carries an AssertionError and returns it.
func As(err error) (*AssertionError, bool) {
	var ae *AssertionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// maxFrames bounds how much of the caller stack an Origin keeps.
const maxFrames = 32

// internalPackages are skipped from the top of a captured stack.
var internalPackages = []string{
	"github.com/artie-owlet/chifir.",
	"github.com/artie-owlet/chifir/internal/brew.",
	"github.com/artie-owlet/chifir/internal/diagnostic.",
	"github.com/artie-owlet/chifir/internal/deferred.",
}

var opSeq atomic.Uint64

// Origin is the call site of a single chain operation.
type Origin struct {
	Op       string
	Seq      uint64
	frames   []runtime.Frame
	deferred bool
}

// Capture records the caller of the operation op, skipping chain internals.
func Capture(op string) Origin {
	pcs := make([]uintptr, maxFrames+8)
	n := runtime.Callers(2, pcs)
	return Origin{
		Op:     op,
		Seq:    opSeq.Add(1),
		frames: external(pcs[:n]),
	}
}

// Deferred returns a copy of o marked as running inside a continuation.
func (o Origin) Deferred() Origin {
	o.deferred = true
	return o
}

// IsDeferred reports whether o was handed to a continuation.
func (o Origin) IsDeferred() bool {
	return o.deferred
}

// Frame returns the first user frame, if any.
func (o Origin) Frame() (runtime.Frame, bool) {
	if len(o.frames) == 0 {
		return runtime.Frame{}, false
	}
	return o.frames[0], true
}

// String renders the origin as "Op#Seq at file:line".
func (o Origin) String() string {
	f, ok := o.Frame()
	if !ok {
		return fmt.Sprintf("%s#%d", o.Op, o.Seq)
	}
	return fmt.Sprintf("%s#%d at %s:%d", o.Op, o.Seq, f.File, f.Line)
}

func external(pcs []uintptr) []runtime.Frame {
	frames := runtime.CallersFrames(pcs)
	var out []runtime.Frame
	skipping := true
	for {
		f, more := frames.Next()
		if skipping && isInternal(f) {
			if !more {
				break
			}
			continue
		}
		skipping = false
		out = append(out, f)
		if !more || len(out) == maxFrames {
			break
		}
	}
	return out
}

func isInternal(f runtime.Frame) bool {
	if f.File == "<autogenerated>" {
		return true
	}
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	for _, prefix := range internalPackages {
		if strings.HasPrefix(f.Function, prefix) {
			return true
		}
	}
	return false
}

// New builds the failure for a check that failed at origin.
func New(origin Origin, message string, actual any, details string) *AssertionError {
	err := &AssertionError{
		Op:       origin.Op,
		Message:  message,
		Actual:   actual,
		Details:  details,
		Deferred: origin.deferred,
		Stack:    stitch(message, origin),
	}
	if origin.deferred {
		logging.AsyncDebug("assertion failed in continuation: %s (%s)", message, origin)
	} else {
		logging.ChainDebug("assertion failed: %s (%s)", message, origin)
	}
	return err
}

func stitch(message string, origin Origin) string {
	var sb strings.Builder
	sb.WriteString(message)
	for _, f := range origin.frames {
		fmt.Fprintf(&sb, "\n%s(...)\n\t%s:%d", f.Function, f.File, f.Line)
	}
	return sb.String()
}
