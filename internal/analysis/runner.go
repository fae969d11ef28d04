package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/logging"
	"github.com/thoreinstein/mcpcheck/internal/mcp"
)

// Caller performs one tools/call exchange. *mcp.Client satisfies it.
type Caller interface {
	CallTool(ctx context.Context, id int64, name string, args map[string]any, timeout time.Duration) (*mcp.CallResult, error)
}

// Outcome is what happened to one step.
type Outcome struct {
	Index    int
	Step     Step
	Result   any
	Err      error
	Duration time.Duration
}

// Failed reports whether the step produced no usable result.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Runner executes plans step by step.
type Runner struct {
	caller  Caller
	now     func() time.Time
	onStart func(index, total int, step Step)
	onDone  func(Outcome)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// OnStepStart registers a callback invoked before each step.
func OnStepStart(fn func(index, total int, step Step)) RunnerOption {
	return func(r *Runner) {
		r.onStart = fn
	}
}

// OnStepDone registers a callback invoked after each step.
func OnStepDone(fn func(Outcome)) RunnerOption {
	return func(r *Runner) {
		r.onDone = fn
	}
}

// NewRunner creates a Runner that sends calls through caller.
func NewRunner(caller Caller, opts ...RunnerOption) *Runner {
	r := &Runner{
		caller: caller,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes plan sequentially against project. Step failures are
// recorded in the report and do not stop the run. Cancelling ctx stops
// before the next step; the partial report is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, plan Plan, project string) (*Report, error) {
	if err := plan.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analysis plan")
	}

	logger := logging.FromContext(ctx)
	report := &Report{
		RunID:     uuid.NewString(),
		Project:   project,
		StartedAt: r.now(),
		Results:   make(map[string]any),
		Failures:  make(map[string]string),
	}
	logger.Info("analysis started", "run_id", report.RunID, "project", project, "steps", len(plan))

	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = r.now()
			return report, errors.Wrap(err, "analysis interrupted")
		}

		if r.onStart != nil {
			r.onStart(i, len(plan), step)
		}
		out := r.runStep(ctx, i, step)
		if out.Failed() {
			report.Failures[step.Key()] = out.Err.Error()
			logger.Warn("analysis step failed", "step", step.Key(), "error", out.Err)
		} else {
			report.Results[step.Key()] = out.Result
			logger.Info("analysis step done", "step", step.Key(), "duration", out.Duration)
		}
		if r.onDone != nil {
			r.onDone(out)
		}
	}

	report.FinishedAt = r.now()
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, i int, step Step) Outcome {
	start := r.now()
	out := Outcome{Index: i, Step: step}

	// Each step uses the wall clock second as its request id.
	res, err := r.caller.CallTool(ctx, start.Unix(), step.Tool, step.Arguments, step.EffectiveTimeout())
	out.Duration = r.now().Sub(start)

	switch {
	case err != nil:
		out.Err = err
	case res.RPCError != nil:
		out.Err = res.RPCError
	default:
		out.Result = res.Result
	}
	return out
}
