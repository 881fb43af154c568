package agent

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/stepper"
)

// Options contains configuration for a NextStepGenerator.
type Options struct {
	// ChatOptions are passed through to the TextGenerator on every call.
	ChatOptions []stepper.Option

	// GenerationTimeout bounds each model call. Zero means no timeout.
	GenerationTimeout time.Duration

	// ActionTimeout bounds each action's CreateStep. Zero means no timeout.
	// A timed-out action becomes an error step.
	ActionTimeout time.Duration

	// RecoverParseErrors turns unparseable model output into an error step
	// instead of returning *format.ParseError. Default is false.
	RecoverParseErrors bool

	// Logger receives generator diagnostics. Default is slog.Default().
	Logger *slog.Logger
}

// Option is a functional option for configuring a NextStepGenerator.
type Option func(*Options)

// WithChatOptions passes options through to the TextGenerator.
func WithChatOptions(opts ...stepper.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// WithModel is a convenience option to set the model for generation calls.
func WithModel(model string) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, stepper.WithModel(model))
	}
}

// WithMaxTokens is a convenience option to set max tokens for generation calls.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, stepper.WithMaxTokens(n))
	}
}

// WithTemperature is a convenience option to set temperature for generation calls.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, stepper.WithTemperature(t))
	}
}

// WithGenerationTimeout sets the timeout for each model call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.GenerationTimeout = d
	}
}

// WithActionTimeout sets the timeout for each action's step creation.
func WithActionTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ActionTimeout = d
	}
}

// WithRecoverParseErrors controls whether unparseable model output becomes an
// error step the model can correct.
func WithRecoverParseErrors(enabled bool) Option {
	return func(o *Options) {
		o.RecoverParseErrors = enabled
	}
}

// WithLogger sets the logger for generator diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// ApplyOptions applies functional options to an Options struct with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
