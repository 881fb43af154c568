package stepper

import "context"

// TextGenerator is the stateless request/response interface to a language model.
//
// Implementations must not mutate messages. Errors are backend failures and
// are returned to the caller untouched; categorized errors (see [Error]) let
// callers decide whether a retry makes sense.
type TextGenerator interface {
	GenerateText(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

// TextGeneratorFunc adapts a plain function to the TextGenerator interface.
type TextGeneratorFunc func(ctx context.Context, messages []Message, opts ...Option) (string, error)

// GenerateText calls f.
func (f TextGeneratorFunc) GenerateText(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	return f(ctx, messages, opts...)
}
