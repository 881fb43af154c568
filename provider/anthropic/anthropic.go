// Package anthropic implements stepper.TextGenerator on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/internal/provider"
)

const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement stepper.TextGenerator.
type Client struct {
	client *anthropic.Client
	model  ChatModel
}

// ClientOption configures the Anthropic client.
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

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.sdkOpts = append(c.sdkOpts, option.WithBaseURL(url))
	}
}

// New creates a new Anthropic client with the given API key.
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

	client := anthropic.NewClient(sdkOpts...)
	return &Client{client: &client, model: cfg.model}
}

// GenerateText sends the conversation and returns the concatenated text blocks.
func (c *Client) GenerateText(ctx context.Context, messages []stepper.Message, opts ...stepper.Option) (string, error) {
	options := stepper.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = ChatModel(options.Model)
	}

	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model.String()),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", stepper.ErrEmptyResponse
	}
	return b.String(), nil
}

// convertMessages splits leading system messages into the system prompt.
// The Messages API has no system role inside the conversation, so later
// system messages are sent as user turns.
func convertMessages(messages []stepper.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var result []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for _, msg := range messages {
		switch {
		case msg.Role == stepper.RoleSystem && len(result) == 0:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case msg.Role == stepper.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return result, system
}

// wrapError categorizes Anthropic API errors by status code and Retry-After.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.WrapHTTPError(err, apiErr.StatusCode, apiErr.Response)
}
