package script

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artie-owlet/chifir"
	"github.com/artie-owlet/chifir/internal/deferred"
	"github.com/artie-owlet/chifir/internal/logging"
	"github.com/artie-owlet/chifir/internal/render"
)

// Result captures the outcome of one case.
type Result struct {
	CaseID     string
	Success    bool
	Step       string // chain operation that failed, e.g. "Eq"
	Message    string // assertion clause
	Details    string
	Actual     string // rendered value the failing step saw
	Error      string // non-assertion error, e.g. incomparable operands
	DurationMs int64
}

// Report is the outcome of running one script.
type Report struct {
	RunID   string
	Script  string
	Results []Result
	Passed  int
	Failed  int
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Runner executes scripts.
type Runner struct {
	RunID string

	// FailFast stops at the first failing case across all scripts.
	FailFast bool

	// AwaitTimeout bounds the wait for an async case. Zero waits forever.
	AwaitTimeout time.Duration
}

// NewRunner returns a runner with a fresh run ID.
func NewRunner(failFast bool, awaitTimeout time.Duration) *Runner {
	return &Runner{
		RunID:        uuid.NewString(),
		FailFast:     failFast,
		AwaitTimeout: awaitTimeout,
	}
}

// RunAll runs scripts in order. With FailFast it stops after the first
// report that has a failure.
func (r *Runner) RunAll(ctx context.Context, scripts []*Script) ([]*Report, error) {
	reports := make([]*Report, 0, len(scripts))
	for _, s := range scripts {
		rep, err := r.Run(ctx, s)
		if rep != nil {
			reports = append(reports, rep)
		}
		if err != nil {
			return reports, err
		}
		if r.FailFast && !rep.OK() {
			break
		}
	}
	return reports, nil
}

// Run executes all cases of s in order.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	rep := &Report{RunID: r.RunID, Script: s.Path}
	if len(s.Cases) == 0 {
		return rep, nil
	}

	start := time.Now()
	logging.Audit(logging.AuditEvent{Type: logging.AuditRunStart, RunID: r.RunID, Script: s.Path})
	logging.Script("running %s (%d cases)", s.Path, len(s.Cases))

	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		res := r.runCase(ctx, c)
		rep.Results = append(rep.Results, res)
		if res.Success {
			rep.Passed++
		} else {
			rep.Failed++
		}
		r.audit(s, res)

		if !res.Success && r.FailFast {
			break
		}
	}

	logging.Audit(logging.AuditEvent{
		Type:       logging.AuditRunEnd,
		RunID:      r.RunID,
		Script:     s.Path,
		Message:    fmt.Sprintf("%d passed, %d failed", rep.Passed, rep.Failed),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return rep, nil
}

func (r *Runner) audit(s *Script, res Result) {
	ev := logging.AuditEvent{
		RunID:      r.RunID,
		Script:     s.Path,
		CaseID:     res.CaseID,
		Step:       res.Step,
		DurationMs: res.DurationMs,
	}
	switch {
	case res.Success:
		ev.Type = logging.AuditCasePass
	case res.Error != "":
		ev.Type = logging.AuditCaseError
		ev.Message = res.Error
	default:
		ev.Type = logging.AuditCaseFail
		ev.Message = res.Message
	}
	logging.Audit(ev)
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	start := time.Now()
	res := Result{CaseID: c.ID}

	var err error
	if c.Async {
		err = r.runAsync(ctx, c)
	} else {
		err = runSync(c)
	}
	res.DurationMs = time.Since(start).Milliseconds()

	if err == nil {
		res.Success = true
		return res
	}
	if ae, ok := chifir.As(err); ok {
		res.Step = ae.Op
		res.Message = ae.Message
		res.Details = ae.Details
		res.Actual = render.Value(ae.Actual)
		logging.ScriptDebug("case %s failed:\n%s", c.ID, ae.Stack)
		return res
	}
	res.Error = err.Error()
	logging.ScriptWarn("case %s errored: %v", c.ID, err)
	return res
}

func runSync(c Case) (err error) {
	ops, err := compile[syncChain](c.Steps)
	if err != nil {
		return err
	}
	defer recoverTo(&err)

	return chifir.Catch(func() {
		ch := chifir.Expect(c.Value)
		for _, op := range ops {
			ch = op(ch)
		}
	})
}

func (r *Runner) runAsync(ctx context.Context, c Case) (err error) {
	ops, err := compile[asyncChain](c.Steps)
	if err != nil {
		return err
	}
	defer recoverTo(&err)

	value := c.Value
	ch := chifir.ExpectAsync(deferred.Go(func() (any, error) { return value, nil }))
	for _, op := range ops {
		ch = op(ch)
	}

	if r.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.AwaitTimeout)
		defer cancel()
	}
	_, err = ch.Await(ctx)
	return err
}

// recoverTo turns a panic into an error. Assertion failures arrive as
// errors; anything else is reported with its value.
func recoverTo(err *error) {
	p := recover()
	if p == nil {
		return
	}
	if e, ok := p.(error); ok {
		*err = e
		return
	}
	*err = fmt.Errorf("panic: %v", p)
}
