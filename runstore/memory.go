package runstore

import (
	"context"
	"sync"

	"github.com/spetersoncode/stepper/step"
)

// Memory provides thread-safe in-memory step storage.
type Memory struct {
	mu   sync.RWMutex
	runs map[string][]*step.Step
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		runs: make(map[string][]*step.Step),
	}
}

// Append records a step for runID.
func (m *Memory) Append(_ context.Context, runID string, s *step.Step) error {
	if s == nil {
		return ErrNilStep
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.runs[runID] {
		if existing.ID() == s.ID() {
			return &ErrDuplicateStep{RunID: runID, StepID: s.ID()}
		}
	}
	m.runs[runID] = append(m.runs[runID], s)
	return nil
}

// Steps returns a copy of the history of runID.
func (m *Memory) Steps(_ context.Context, runID string) ([]*step.Step, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	steps := m.runs[runID]
	out := make([]*step.Step, len(steps))
	copy(out, steps)
	return out, nil
}

// Runs returns the ids of all runs with at least one step.
func (m *Memory) Runs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	return ids, nil
}
