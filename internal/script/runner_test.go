package script

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/artie-owlet/chifir/internal/logging"
)

func mustParse(t *testing.T, body string) *Script {
	t.Helper()
	s, err := Parse([]byte(body))
	require.NoError(t, err)
	s.Path = t.Name() + ".yaml"
	return s
}

func runScript(t *testing.T, r *Runner, body string) *Report {
	t.Helper()
	rep, err := r.Run(context.Background(), mustParse(t, body))
	require.NoError(t, err)
	return rep
}

func TestRunPasses(t *testing.T) {
	rep := runScript(t, NewRunner(false, time.Second), sample)
	assert.True(t, rep.OK())
	assert.Equal(t, 2, rep.Passed)
	require.Len(t, rep.Results, 2)
	for _, res := range rep.Results {
		assert.True(t, res.Success, "case %s: %s %s", res.CaseID, res.Message, res.Error)
	}
}

func TestRunReportsFailure(t *testing.T) {
	rep := runScript(t, NewRunner(false, time.Second), `cases:
  - id: wrong
    value: {a: 13}
    steps:
      - prop: a
      - eq: 14
  - id: after
    value: 1
    steps: [exist]
`)
	assert.False(t, rep.OK())
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, rep.Passed)

	res := rep.Results[0]
	assert.False(t, res.Success)
	assert.Equal(t, "Eq", res.Step)
	assert.Equal(t, "Expected to be equal to 14", res.Message)
	assert.Equal(t, "13", res.Actual)
	assert.Empty(t, res.Error)
}

func TestRunFailFast(t *testing.T) {
	rep := runScript(t, NewRunner(true, time.Second), `cases:
  - id: first
    value: null
    steps: [exist]
  - id: second
    value: 1
    steps: [exist]
`)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "Expected to be not nil", rep.Results[0].Message)
}

func TestRunForeignError(t *testing.T) {
	rep := runScript(t, NewRunner(false, time.Second), `cases:
  - id: incomparable
    value: 13
    steps:
      - lt: "x"
`)
	res := rep.Results[0]
	assert.False(t, res.Success)
	assert.Empty(t, res.Message)
	assert.Contains(t, res.Error, "incomparable")
}

func TestRunAsync(t *testing.T) {
	rep := runScript(t, NewRunner(false, time.Second), `cases:
  - id: ok
    async: true
    value: {items: [1, 2]}
    steps:
      - prop: items
      - prop: 1
      - ge: 2
  - id: fails
    async: true
    value: {items: []}
    steps:
      - prop: items
      - prop: 0
`)
	require.Len(t, rep.Results, 2)
	assert.True(t, rep.Results[0].Success)
	assert.False(t, rep.Results[1].Success)
	assert.Equal(t, "Prop", rep.Results[1].Step)
	assert.Equal(t, `Expected to have the 0 property`, rep.Results[1].Message)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := NewRunner(false, 0).Run(ctx, mustParse(t, sample))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Results)
}

func TestRunAllFailFast(t *testing.T) {
	failing := mustParse(t, "cases:\n  - value: null\n    steps: [exist]\n")
	passing := mustParse(t, sample)

	reports, err := NewRunner(true, 0).RunAll(context.Background(), []*Script{failing, passing})
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	reports, err = NewRunner(false, 0).RunAll(context.Background(), []*Script{failing, passing})
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestRunEmitsAuditEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.Replace(zap.New(core), logging.Config{DebugMode: true})
	t.Cleanup(func() { logging.Replace(nil, logging.Config{}) })

	r := NewRunner(false, 0)
	runScript(t, r, `cases:
  - id: good
    value: 1
    steps: [exist]
  - id: bad
    value: 1
    steps:
      - eq: 2
`)

	audit := logs.FilterLoggerName(string(logging.CategoryAudit)).All()
	var events []string
	for _, e := range audit {
		events = append(events, e.ContextMap()["event"].(string))
		assert.Equal(t, r.RunID, e.ContextMap()["run_id"])
	}
	assert.Equal(t, []string{"run_start", "case_pass", "case_fail", "run_end"}, events)
}
