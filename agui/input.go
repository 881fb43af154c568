package agui

import (
	"errors"
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/stepper"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
// This mirrors the AG-UI protocol specification and is transport-agnostic.
type RunAgentInput struct {
	ThreadID       string           `json:"thread_id"`
	RunID          string           `json:"run_id"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"`
	Context        []any            `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps any              `json:"forwarded_props,omitempty"`
}

// PreparedInput contains validated input ready for an agent run.
type PreparedInput struct {
	ThreadID string
	RunID    string

	// Instructions is the content of the last user message.
	Instructions string

	// Messages is the full converted conversation.
	Messages []stepper.Message
}

var (
	// ErrNoMessages is returned when the input contains no messages.
	ErrNoMessages = errors.New("no messages provided")

	// ErrNoInstructions is returned when no user message carries text.
	ErrNoInstructions = errors.New("no user message with instructions")
)

// Prepare validates the input and extracts the task instructions.
func (r *RunAgentInput) Prepare() (*PreparedInput, error) {
	messages := ToMessages(r.Messages)
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	var instructions string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == stepper.RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			instructions = messages[i].Content
			break
		}
	}
	if instructions == "" {
		return nil, ErrNoInstructions
	}

	return &PreparedInput{
		ThreadID:     r.ThreadID,
		RunID:        r.RunID,
		Instructions: instructions,
		Messages:     messages,
	}, nil
}
