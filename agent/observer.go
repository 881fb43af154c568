package agent

import (
	"context"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/step"
)

// StartedEvent is delivered immediately before the model call.
type StartedEvent struct {
	Run      *Run
	Messages []stepper.Message
}

// FinishedEvent is delivered once the next step has been determined.
type FinishedEvent struct {
	Run           *Run
	GeneratedText string
	Step          *step.Step
}

// Observer receives step generation lifecycle notifications. Hooks run
// synchronously on the generating goroutine and must not block for long.
type Observer interface {
	OnStepGenerationStarted(ctx context.Context, ev StartedEvent)
	OnStepGenerationFinished(ctx context.Context, ev FinishedEvent)
}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	Started  func(ctx context.Context, ev StartedEvent)
	Finished func(ctx context.Context, ev FinishedEvent)
}

func (f ObserverFuncs) OnStepGenerationStarted(ctx context.Context, ev StartedEvent) {
	if f.Started != nil {
		f.Started(ctx, ev)
	}
}

func (f ObserverFuncs) OnStepGenerationFinished(ctx context.Context, ev FinishedEvent) {
	if f.Finished != nil {
		f.Finished(ctx, ev)
	}
}

type multiObserver []Observer

// Observers combines several observers into one. They are notified in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) OnStepGenerationStarted(ctx context.Context, ev StartedEvent) {
	for _, o := range m {
		o.OnStepGenerationStarted(ctx, ev)
	}
}

func (m multiObserver) OnStepGenerationFinished(ctx context.Context, ev FinishedEvent) {
	for _, o := range m {
		o.OnStepGenerationFinished(ctx, ev)
	}
}
