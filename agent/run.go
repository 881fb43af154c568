package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spetersoncode/stepper/runstore"
	"github.com/spetersoncode/stepper/step"
)

// Run is the context of one task execution: the instructions, the
// append-only step history and the attached observers.
type Run struct {
	id           string
	instructions string
	store        runstore.Store

	mu        sync.RWMutex
	observers []Observer
	steps     []*step.Step
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithRunID sets the run identifier. Default is a random UUID.
func WithRunID(id string) RunOption {
	return func(r *Run) {
		r.id = id
	}
}

// WithObserver attaches an observer to the run.
func WithObserver(o Observer) RunOption {
	return func(r *Run) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithStore persists every appended step to s.
func WithStore(s runstore.Store) RunOption {
	return func(r *Run) {
		r.store = s
	}
}

// WithSteps seeds the history with previously completed steps.
func WithSteps(steps ...*step.Step) RunOption {
	return func(r *Run) {
		r.steps = append(r.steps, steps...)
	}
}

// NewRun creates a run for the given task instructions.
func NewRun(instructions string, opts ...RunOption) *Run {
	r := &Run{
		id:           uuid.New().String(),
		instructions: instructions,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResumeRun loads the step history of runID from s and returns a run that
// keeps persisting to s.
func ResumeRun(ctx context.Context, s runstore.Store, runID, instructions string, opts ...RunOption) (*Run, error) {
	steps, err := s.Steps(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("agent: load run %s: %w", runID, err)
	}
	opts = append([]RunOption{WithRunID(runID), WithStore(s), WithSteps(steps...)}, opts...)
	return NewRun(instructions, opts...), nil
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Instructions returns the task text.
func (r *Run) Instructions() string { return r.instructions }

// Steps returns a copy of the completed steps in creation order.
func (r *Run) Steps() []*step.Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*step.Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len returns the number of completed steps.
func (r *Run) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// Subscribe attaches an additional observer.
func (r *Run) Subscribe(o Observer) {
	if o == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Append records a completed step. When a store is configured the step is
// persisted first; a store failure leaves the history unchanged.
func (r *Run) Append(ctx context.Context, s *step.Step) error {
	if s == nil {
		return errors.New("agent: cannot append nil step")
	}
	if r.store != nil {
		if err := r.store.Append(ctx, r.id, s); err != nil {
			return fmt.Errorf("agent: persist step: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
	return nil
}

func (r *Run) observer() Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.observers) == 0 {
		return nil
	}
	return Observers(r.observers...)
}
