package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/stepper"
)

type generateRequest struct {
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func TestConvertMessages(t *testing.T) {
	contents, system := convertMessages([]stepper.Message{
		stepper.NewSystemMessage("## ROLE\nResearcher"),
		stepper.NewUserMessage("Find X"),
		stepper.NewAssistantMessage("thinking"),
		stepper.NewSystemMessage("ERROR:\nboom"),
	})

	require.NotNil(t, system)
	assert.Equal(t, "## ROLE\nResearcher", system.Parts[0].Text)
	require.Len(t, contents, 3)
	assert.Equal(t, roleUser, contents[0].Role)
	assert.Equal(t, roleModel, contents[1].Role)
	assert.Equal(t, roleUser, contents[2].Role)
	assert.Equal(t, "ERROR:\nboom", contents[2].Parts[0].Text)

	contents, system = convertMessages([]stepper.Message{stepper.NewUserMessage("hi")})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestClient_GenerateText(t *testing.T) {
	var got generateRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"All "},{"text":"done."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), "key", WithBaseURL(srv.URL), WithModel(Gemini25FlashLite))
	require.NoError(t, err)

	text, err := c.GenerateText(context.Background(), []stepper.Message{
		stepper.NewSystemMessage("sys"),
		stepper.NewUserMessage("Find X"),
	})

	require.NoError(t, err)
	assert.Equal(t, "All done.", text)
	assert.True(t, strings.HasSuffix(path, "models/gemini-2.5-flash-lite:generateContent"), path)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "Find X", got.Contents[0].Parts[0].Text)
}

func TestClient_ErrorCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"unavailable","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), "key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), []stepper.Message{stepper.NewUserMessage("hi")})

	require.Error(t, err)
	assert.True(t, stepper.IsTransient(err))
	assert.Equal(t, 503, stepper.StatusCodeOf(err))
}
