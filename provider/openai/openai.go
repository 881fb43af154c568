// Package openai implements stepper.TextGenerator on the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/internal/provider"
)

// Client wraps the OpenAI SDK to implement stepper.TextGenerator.
type Client struct {
	client *openai.Client
	model  ChatModel
}

// ClientOption configures the OpenAI client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   ChatModel
	sdkOpts []option.RequestOption
}

// WithModel sets the default model for requests.
func WithModel(model ChatModel) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.sdkOpts = append(c.sdkOpts, option.WithBaseURL(url))
	}
}

// New creates a new OpenAI client with the given API key.
// SDK-level retries are disabled; wrap the client with retry.NewGenerator.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := &clientConfig{model: DefaultChatModel}
	for _, opt := range opts {
		opt(cfg)
	}

	sdkOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, cfg.sdkOpts...)

	client := openai.NewClient(sdkOpts...)
	return &Client{client: &client, model: cfg.model}
}

// GenerateText sends the conversation and returns the completion text.
func (c *Client) GenerateText(ctx context.Context, messages []stepper.Message, opts ...stepper.Option) (string, error) {
	options := stepper.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = ChatModel(options.Model)
	}

	params := openai.ChatCompletionNewParams{
		Model:    model.String(),
		Messages: convertMessages(messages),
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", stepper.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []stepper.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case stepper.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case stepper.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

// wrapError categorizes OpenAI API errors by status code and Retry-After.
// Other errors are returned as-is.
func wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.WrapHTTPError(err, apiErr.StatusCode, apiErr.Response)
}
