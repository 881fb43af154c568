// Package observer provides ready-made agent.Observer implementations.
package observer

import (
	"context"
	"log/slog"

	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/step"
)

type loggerObserver struct {
	logger *slog.Logger
}

// NewLogger returns an observer that logs every step generation.
// Starts are logged at Debug, finished steps at Info, error steps at Warn.
func NewLogger(logger *slog.Logger) agent.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggerObserver{logger: logger}
}

func (o *loggerObserver) OnStepGenerationStarted(ctx context.Context, ev agent.StartedEvent) {
	o.logger.DebugContext(ctx, "generating step",
		"run", ev.Run.ID(),
		"completed", ev.Run.Len(),
		"messages", len(ev.Messages),
	)
}

func (o *loggerObserver) OnStepGenerationFinished(ctx context.Context, ev agent.FinishedEvent) {
	attrs := []any{
		"run", ev.Run.ID(),
		"step", ev.Step.ID(),
		"type", ev.Step.Type(),
		"summary", ev.Step.Summary(),
	}
	switch ev.Step.State().(type) {
	case step.Failed:
		o.logger.WarnContext(ctx, "step failed", attrs...)
	case step.Succeeded:
		o.logger.InfoContext(ctx, "step generated", attrs...)
	}
}
