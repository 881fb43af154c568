package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/stepper"
)

type chatRequest struct {
	Model               string  `json:"model"`
	MaxCompletionTokens int     `json:"max_completion_tokens"`
	Temperature         float64 `json:"temperature"`
	Messages            []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestClient_GenerateText(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"action\": \"done\"}"}}],
			"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL), WithModel(GPT4o))
	text, err := c.GenerateText(context.Background(), []stepper.Message{
		stepper.NewSystemMessage("## ROLE\nResearcher"),
		stepper.NewUserMessage("Find X"),
		stepper.NewAssistantMessage("thinking"),
	}, stepper.WithMaxTokens(100), stepper.WithTemperature(0.2))

	require.NoError(t, err)
	assert.Equal(t, `{"action": "done"}`, text)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 100, got.MaxCompletionTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "Find X", got.Messages[1].Content)
}

func TestClient_ModelOverride(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"o3","choices":[]}`))
	}))
	defer srv.Close()

	_, err := New("key", WithBaseURL(srv.URL)).GenerateText(context.Background(),
		[]stepper.Message{stepper.NewUserMessage("hi")}, stepper.WithModel("o3"))

	assert.ErrorIs(t, err, stepper.ErrEmptyResponse)
	assert.Equal(t, "o3", got.Model)
}

func TestClient_ErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		check      func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, "2", func(t *testing.T, err error) {
			assert.True(t, stepper.IsTransient(err))
			assert.Equal(t, 2*time.Second, stepper.RetryAfterOf(err))
		}},
		{"server error", http.StatusBadGateway, "", func(t *testing.T, err error) {
			assert.True(t, stepper.IsTransient(err))
		}},
		{"unauthorized", http.StatusUnauthorized, "", func(t *testing.T, err error) {
			assert.True(t, stepper.IsPermanent(err))
		}},
		{"bad request", http.StatusBadRequest, "", func(t *testing.T, err error) {
			assert.True(t, stepper.IsUserInput(err))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			}))
			defer srv.Close()

			_, err := New("key", WithBaseURL(srv.URL)).GenerateText(context.Background(),
				[]stepper.Message{stepper.NewUserMessage("hi")})

			require.Error(t, err)
			assert.Equal(t, tt.status, stepper.StatusCodeOf(err))
			tt.check(t, err)
		})
	}
}
