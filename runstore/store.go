// Package runstore persists the append-only step history of agent runs.
//
// Two implementations are provided: [Memory] for tests and short-lived
// processes, and [SQLite] for durable histories that can be resumed.
// Step outputs round-trip through JSON, so a restored output holds generic
// JSON values (maps, slices, float64) rather than the action's original type.
package runstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/stepper/step"
)

// Store persists steps per run. Implementations must be thread-safe.
type Store interface {
	// Append records a step at the end of the run's history.
	Append(ctx context.Context, runID string, s *step.Step) error

	// Steps returns the run's history in append order. An unknown run has
	// an empty history.
	Steps(ctx context.Context, runID string) ([]*step.Step, error)
}

// ErrNilStep is returned when appending a nil step.
var ErrNilStep = errors.New("runstore: nil step")

// ErrDuplicateStep is returned when a step id was already recorded for a run.
type ErrDuplicateStep struct {
	RunID  string
	StepID string
}

func (e *ErrDuplicateStep) Error() string {
	return fmt.Sprintf("runstore: step %s already recorded for run %s", e.StepID, e.RunID)
}
