package retry

import (
	"context"
	"log/slog"

	"github.com/spetersoncode/stepper"
)

// Generator wraps a TextGenerator and retries transient failures.
type Generator struct {
	next   stepper.TextGenerator
	cfg    Config
	logger *slog.Logger
	events chan<- Event
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger logs failed attempts and retries.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithEvents reports retry progress on ch. Sends never block.
func WithEvents(ch chan<- Event) GeneratorOption {
	return func(g *Generator) {
		g.events = ch
	}
}

// NewGenerator returns a TextGenerator that retries next according to cfg.
func NewGenerator(next stepper.TextGenerator, cfg Config, opts ...GeneratorOption) *Generator {
	g := &Generator{next: next, cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateText implements stepper.TextGenerator.
func (g *Generator) GenerateText(ctx context.Context, messages []stepper.Message, opts ...stepper.Option) (string, error) {
	return run(ctx, g.cfg, g.notify, func() (string, error) {
		return g.next.GenerateText(ctx, messages, opts...)
	})
}

func (g *Generator) notify(e Event) {
	emit(g.events, e)
	if g.logger == nil {
		return
	}
	switch e.Type {
	case EventRetrying:
		g.logger.Warn("retrying text generation",
			"attempt", e.Attempt, "max_attempts", e.MaxAttempts, "delay", e.Delay, "error", e.Error)
	case EventExhausted:
		g.logger.Error("text generation retries exhausted", "attempts", e.Attempt, "error", e.Error)
	}
}
