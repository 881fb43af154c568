package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/stepper"
)

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func TestClient_GenerateText(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5",
			"content":[{"type":"text","text":"Let me "},{"type":"text","text":"think."}],
			"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":2}}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL), WithModel(ClaudeHaiku45))
	text, err := c.GenerateText(context.Background(), []stepper.Message{
		stepper.NewSystemMessage("## ROLE\nResearcher"),
		stepper.NewUserMessage("Find X"),
		stepper.NewAssistantMessage(`{"action": "search"}`),
		stepper.NewSystemMessage("ERROR:\nboom"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Let me think.", text)
	assert.Equal(t, "claude-haiku-4-5", got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "## ROLE\nResearcher", got.System[0].Text)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "ERROR:\nboom", got.Messages[2].Content[0].Text)
}

func TestClient_ErrorCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	_, err := New("key", WithBaseURL(srv.URL)).GenerateText(context.Background(),
		[]stepper.Message{stepper.NewUserMessage("hi")})

	require.Error(t, err)
	assert.True(t, stepper.IsTransient(err))
	assert.Equal(t, 529, stepper.StatusCodeOf(err))
}

func TestConvertMessages(t *testing.T) {
	msgs, system := convertMessages([]stepper.Message{
		stepper.NewSystemMessage("a"),
		stepper.NewSystemMessage("b"),
		stepper.NewUserMessage("c"),
	})

	assert.Len(t, system, 2)
	assert.Len(t, msgs, 1)
}
