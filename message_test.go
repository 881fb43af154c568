package stepper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleConstants(t *testing.T) {
	assert.Equal(t, Role("system"), RoleSystem)
	assert.Equal(t, Role("user"), RoleUser)
	assert.Equal(t, Role("assistant"), RoleAssistant)
}

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, NewSystemMessage("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, NewUserMessage("u"))
	assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, NewAssistantMessage("a"))
}

func TestCloneMessages(t *testing.T) {
	t.Run("copy does not share backing array", func(t *testing.T) {
		original := []Message{NewUserMessage("one")}
		clone := CloneMessages(original)
		clone[0].Content = "changed"
		assert.Equal(t, "one", original[0].Content)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, CloneMessages(nil))
	})
}

func TestTextGeneratorFunc(t *testing.T) {
	var got []Message
	gen := TextGeneratorFunc(func(ctx context.Context, messages []Message, opts ...Option) (string, error) {
		got = messages
		return "ok", nil
	})

	text, err := gen.GenerateText(context.Background(), []Message{NewUserMessage("hi")})

	assert.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Len(t, got, 1)
}
