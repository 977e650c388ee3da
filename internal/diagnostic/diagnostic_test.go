package diagnostic

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertionError_NilReceiver(t *testing.T) {
	var e *AssertionError
	assert.Equal(t, ErrAssertionFailed.Error(), e.Error())
}

func TestAssertionError_Error(t *testing.T) {
	e := &AssertionError{Message: "Expected to be equal to 13"}
	assert.Equal(t, "Expected to be equal to 13", e.Error())

	e.Details = "diff"
	assert.Equal(t, "Expected to be equal to 13\ndiff", e.Error())
}

func TestAssertionError_Unwrap(t *testing.T) {
	var err error = &AssertionError{Message: "x"}
	assert.ErrorIs(t, err, ErrAssertionFailed)

	wrapped := fmt.Errorf("step 3: %w", err)
	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "x", ae.Message)

	_, ok = As(errors.New("other"))
	assert.False(t, ok)
}

func TestCaptureStartsAtCaller(t *testing.T) {
	o := Capture("Eq")

	f, ok := o.Frame()
	require.True(t, ok)
	assert.Equal(t, "github.com/artie-owlet/chifir/internal/diagnostic.TestCaptureStartsAtCaller", f.Function)
	assert.True(t, strings.HasSuffix(f.File, "diagnostic_test.go"))
	assert.Equal(t, "Eq", o.Op)
	assert.False(t, o.IsDeferred())
}

func TestCaptureSequenceIncreases(t *testing.T) {
	a := Capture("Eq")
	b := Capture("Ne")
	assert.Greater(t, b.Seq, a.Seq)
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		name  string
		frame runtime.Frame
		want  bool
	}{
		{"root package", runtime.Frame{Function: "github.com/artie-owlet/chifir.Chain.Prop", File: "/src/chain.go"}, true},
		{"generic graft", runtime.Frame{Function: "github.com/artie-owlet/chifir.grafted[...].Eq", File: "/src/graft.go"}, true},
		{"brew", runtime.Frame{Function: "github.com/artie-owlet/chifir/internal/brew.Brew.Assert", File: "/src/brew.go"}, true},
		{"wrapper", runtime.Frame{Function: "github.com/x/y.T.M", File: "<autogenerated>"}, true},
		{"root tests", runtime.Frame{Function: "github.com/artie-owlet/chifir.TestEq", File: "/src/chain_test.go"}, false},
		{"script runner", runtime.Frame{Function: "github.com/artie-owlet/chifir/internal/script.(*Runner).runCase", File: "/src/runner.go"}, false},
		{"user", runtime.Frame{Function: "example.com/app.TestThing", File: "/app/thing_test.go"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isInternal(tt.frame))
		})
	}
}

func TestNewSync(t *testing.T) {
	o := Capture("Eq")
	err := New(o, "Expected to be equal to 14", 13, "")

	assert.Equal(t, "Eq", err.Op)
	assert.Equal(t, 13, err.Actual)
	assert.False(t, err.Deferred)
	assert.True(t, strings.HasPrefix(err.Stack, "Expected to be equal to 14\n"))
	assert.Contains(t, err.Stack, "TestNewSync")
}

func TestNewDeferredStitchesCapturedFrame(t *testing.T) {
	o := Capture("Prop")

	done := make(chan *AssertionError)
	go func(origin Origin) {
		done <- New(origin, `Expected to have the "a" property`, nil, "")
	}(o.Deferred())
	err := <-done

	assert.True(t, err.Deferred)
	assert.Contains(t, err.Stack, "TestNewDeferredStitchesCapturedFrame")
	assert.NotContains(t, err.Stack, "func1")
}

func TestOriginString(t *testing.T) {
	o := Origin{Op: "Eq", Seq: 7}
	assert.Equal(t, "Eq#7", o.String())

	o = Capture("Lt")
	assert.Contains(t, o.String(), "diagnostic_test.go:")
}
