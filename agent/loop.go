package agent

import (
	"context"
	"errors"
	"time"

	"github.com/spetersoncode/stepper/step"
)

// TerminationReason indicates why the loop stopped.
type TerminationReason string

const (
	// TerminationDone indicates a done step was produced.
	TerminationDone TerminationReason = "done"

	// TerminationMaxSteps indicates the step limit was reached.
	TerminationMaxSteps TerminationReason = "max_steps"

	// TerminationTimeout indicates the context deadline was exceeded.
	TerminationTimeout TerminationReason = "timeout"

	// TerminationCancelled indicates context cancellation.
	TerminationCancelled TerminationReason = "cancelled"

	// TerminationError indicates an unrecoverable error occurred.
	TerminationError TerminationReason = "error"
)

// Result represents the outcome of a Loop call.
type Result struct {
	// Steps holds the steps produced by this call, in order.
	Steps []*step.Step

	// Termination indicates why execution stopped.
	Termination TerminationReason

	// Error contains the error that caused termination, if any.
	Error error
}

// Last returns the most recent step produced, or nil.
func (r *Result) Last() *step.Step {
	if len(r.Steps) == 0 {
		return nil
	}
	return r.Steps[len(r.Steps)-1]
}

// LoopOptions contains configuration for Loop.
type LoopOptions struct {
	// MaxSteps limits the number of iterations of one Loop call.
	// Set to 0 for unlimited (not recommended). Default is 10.
	MaxSteps int

	// Timeout sets a deadline for the whole loop.
	// A value of 0 means no timeout (context deadline applies).
	Timeout time.Duration
}

// LoopOption is a functional option for configuring Loop.
type LoopOption func(*LoopOptions)

// WithMaxSteps sets the maximum number of iterations.
// Default is 10. Set to 0 for unlimited (not recommended).
func WithMaxSteps(n int) LoopOption {
	return func(o *LoopOptions) {
		o.MaxSteps = n
	}
}

// WithTimeout sets a deadline for the whole loop.
func WithTimeout(d time.Duration) LoopOption {
	return func(o *LoopOptions) {
		o.Timeout = d
	}
}

// ApplyLoopOptions applies functional options with defaults.
func ApplyLoopOptions(opts ...LoopOption) *LoopOptions {
	o := &LoopOptions{MaxSteps: 10}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Loop drives a run: it generates the next step, appends it to the run and
// repeats until a done step, the step limit, or the end of ctx. Iterations
// are strictly sequential. The returned error is the fatal error, if any; it
// is also stored in Result.Error.
func Loop(ctx context.Context, gen *NextStepGenerator, run *Run, opts ...LoopOption) (*Result, error) {
	if gen == nil {
		return nil, &ConfigError{Field: "NextStepGenerator"}
	}
	if run == nil {
		return nil, ErrNilRun
	}

	options := ApplyLoopOptions(opts...)
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	result := &Result{}
	fail := func(err error) (*Result, error) {
		if reason := contextTermination(ctx); reason != "" {
			result.Termination = reason
		} else {
			result.Termination = TerminationError
		}
		result.Error = err
		return result, err
	}

	for {
		if reason := contextTermination(ctx); reason != "" {
			result.Termination = reason
			return result, nil
		}
		if options.MaxSteps > 0 && len(result.Steps) >= options.MaxSteps {
			result.Termination = TerminationMaxSteps
			return result, nil
		}

		next, err := gen.GenerateNextStep(ctx, run.Steps(), run)
		if err != nil {
			return fail(err)
		}
		// Observers have already seen next, so record it even if ctx ended
		// while the action ran.
		if err := run.Append(context.WithoutCancel(ctx), next); err != nil {
			return fail(err)
		}
		result.Steps = append(result.Steps, next)

		if next.IsDone() {
			result.Termination = TerminationDone
			return result, nil
		}
	}
}

func contextTermination(ctx context.Context) TerminationReason {
	err := ctx.Err()
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return TerminationTimeout
	default:
		return TerminationCancelled
	}
}
