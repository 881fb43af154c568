package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/stepper"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToMessages converts AG-UI messages to transcript messages.
// Tool messages have no transcript equivalent and are skipped.
func ToMessages(msgs []events.Message) []stepper.Message {
	result := make([]stepper.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleTool {
			continue
		}
		result = append(result, ToMessage(msg))
	}
	return result
}

// ToMessage converts a single AG-UI message to a transcript message.
func ToMessage(msg events.Message) stepper.Message {
	m := stepper.Message{Role: toRole(msg.Role)}
	if msg.Content != nil {
		m.Content = *msg.Content
	}
	return m
}

// FromMessages converts transcript messages to AG-UI messages.
func FromMessages(msgs []stepper.Message) []events.Message {
	result := make([]events.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, FromMessage(msg))
	}
	return result
}

// FromMessage converts a single transcript message to an AG-UI message.
func FromMessage(msg stepper.Message) events.Message {
	m := events.Message{
		ID:   events.GenerateMessageID(),
		Role: string(msg.Role),
	}
	if msg.Content != "" {
		content := msg.Content
		m.Content = &content
	}
	return m
}

func toRole(role string) stepper.Role {
	switch role {
	case RoleAssistant:
		return stepper.RoleAssistant
	case RoleSystem:
		return stepper.RoleSystem
	default:
		return stepper.RoleUser
	}
}
