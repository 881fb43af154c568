package agui

import (
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/step"
)

// Mapper converts step lifecycle notifications to AG-UI events.
//
// Create a new Mapper for each run using NewMapper.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a new Mapper for a single run.
// The threadID and runID are used in lifecycle events (RUN_STARTED, RUN_FINISHED).
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// StepName names the AG-UI step of the n-th generation of a run (1-based).
func StepName(n int) string {
	return fmt.Sprintf("step-%d", n)
}

// StepStarted maps a generation start to STEP_STARTED.
func (m *Mapper) StepStarted(ev agent.StartedEvent) []events.Event {
	return []events.Event{events.NewStepStartedEvent(StepName(ev.Run.Len() + 1))}
}

// StepFinished maps a produced step to the assistant message carrying the
// generated text, a state snapshot of the step, and STEP_FINISHED.
func (m *Mapper) StepFinished(ev agent.FinishedEvent) []events.Event {
	var out []events.Event

	if ev.GeneratedText != "" {
		messageID := events.GenerateMessageID()
		out = append(out,
			events.NewTextMessageStartEvent(messageID, events.WithRole(RoleAssistant)),
			events.NewTextMessageContentEvent(messageID, ev.GeneratedText),
			events.NewTextMessageEndEvent(messageID),
		)
	}

	out = append(out,
		events.NewStateSnapshotEvent(StepState(ev.Step)),
		events.NewStepFinishedEvent(StepName(ev.Run.Len()+1)),
	)
	return out
}

// StepSnapshot is the frontend state published after each step.
type StepSnapshot struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Summary string `json:"summary"`
	Output  any    `json:"output,omitempty"`
}

// StepState converts a step into its frontend snapshot.
func StepState(s *step.Step) StepSnapshot {
	snap := StepSnapshot{ID: s.ID(), Type: s.Type()}
	switch st := s.State().(type) {
	case step.Succeeded:
		snap.Status = step.StatusSucceeded
		snap.Summary = st.Summary
		snap.Output = st.Output
	case step.Failed:
		snap.Status = step.StatusFailed
		snap.Summary = st.Summary
	}
	return snap
}

// MessagesSnapshot returns a MESSAGES_SNAPSHOT event of a transcript.
func (m *Mapper) MessagesSnapshot(ev agent.StartedEvent) events.Event {
	return events.NewMessagesSnapshotEvent(FromMessages(ev.Messages))
}
