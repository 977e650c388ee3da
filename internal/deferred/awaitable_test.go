package deferred

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	v   string
	err error
}

func (j *job) Await(context.Context) (string, error) {
	return j.v, j.err
}

type wrongAwait struct{}

func (wrongAwait) Await() string { return "" }

func TestIsAwaitable(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"int", 13, false},
		{"future", Resolved(1), true},
		{"await method", &job{}, true},
		{"nil receiver", (*job)(nil), false},
		{"wrong signature", wrongAwait{}, false},
		{"channel", make(chan int), true},
		{"recv-only channel", (<-chan int)(make(chan int)), true},
		{"send-only channel", (chan<- int)(make(chan int)), false},
		{"nil channel", (chan int)(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAwaitable(tt.in))
		})
	}
}

func TestAdaptAwaitMethod(t *testing.T) {
	ctx := testCtx(t)

	f, ok := Adapt(&job{v: "done"})
	require.True(t, ok)
	v, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	boom := errors.New("boom")
	f, ok = Adapt(&job{err: boom})
	require.True(t, ok)
	_, err = f.Await(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestAdaptTypedFuture(t *testing.T) {
	f, ok := Adapt(Resolved(13))
	require.True(t, ok)
	v, err := f.Await(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 13, v)
}

func TestAdaptAnyFutureIsReused(t *testing.T) {
	src := Resolved[any]("x")
	f, ok := Adapt(src)
	require.True(t, ok)
	assert.Same(t, src, f)
}

func TestAdaptChannel(t *testing.T) {
	ctx := testCtx(t)

	ch := make(chan int, 1)
	ch <- 13
	f, ok := Adapt(ch)
	require.True(t, ok)
	v, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, v)

	closed := make(chan int)
	close(closed)
	f, ok = Adapt(closed)
	require.True(t, ok)
	_, err = f.Await(ctx)
	assert.ErrorIs(t, err, ErrChannelClosed)
}

func TestAdaptRejectsNonAwaitable(t *testing.T) {
	_, ok := Adapt("nope")
	assert.False(t, ok)
	_, ok = Adapt(nil)
	assert.False(t, ok)
}
