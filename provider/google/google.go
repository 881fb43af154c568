// Package google implements stepper.TextGenerator on the Gemini API.
package google

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/internal/provider"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// Client wraps the Google GenAI SDK to implement stepper.TextGenerator.
type Client struct {
	client *genai.Client
	model  ChatModel
}

// ClientOption configures the Google client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   ChatModel
	baseURL string
}

// WithModel sets the default model for requests.
func WithModel(model ChatModel) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// New creates a new Gemini client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{model: DefaultChatModel}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: cfg.model}, nil
}

// GenerateText sends the conversation and returns the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, messages []stepper.Message, opts ...stepper.Option) (string, error) {
	options := stepper.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = ChatModel(options.Model)
	}

	contents, system := convertMessages(messages)
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}

	resp, err := c.client.Models.GenerateContent(ctx, model.String(), contents, config)
	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", stepper.ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// convertMessages lifts leading system messages into the system instruction.
// Later system messages become user turns; assistant turns use the "model" role.
func convertMessages(messages []stepper.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var systemParts []*genai.Part

	for _, msg := range messages {
		part := &genai.Part{Text: msg.Content}
		switch {
		case msg.Role == stepper.RoleSystem && len(contents) == 0:
			systemParts = append(systemParts, part)
		case msg.Role == stepper.RoleAssistant:
			contents = append(contents, &genai.Content{Role: roleModel, Parts: []*genai.Part{part}})
		default:
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{part}})
		}
	}

	if len(systemParts) == 0 {
		return contents, nil
	}
	return contents, &genai.Content{Parts: systemParts}
}

// wrapError categorizes Gemini API errors by status code.
// genai.APIError does not expose headers, so Retry-After is unavailable.
func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.WrapHTTPError(err, apiErr.Code, nil)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.WrapHTTPError(err, apiErrPtr.Code, nil)
	}
	return err
}
