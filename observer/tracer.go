package observer

import (
	"context"
	"sync"

	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/step"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRunID       = attribute.Key("stepper.run.id")
	AttrMessages    = attribute.Key("stepper.messages")
	AttrStepID      = attribute.Key("stepper.step.id")
	AttrStepType    = attribute.Key("stepper.step.type")
	AttrStepStatus  = attribute.Key("stepper.step.status")
	AttrStepSummary = attribute.Key("stepper.step.summary")
)

// SpanName is the name of the span covering one step generation.
const SpanName = "stepper.generate_step"

// Tracer is an observer that records one span per step generation.
// A generation that never finishes (for example a backend error) is ended
// with an error status when the next generation of the same run starts, or
// by Close.
//
// Observer hooks cannot hand a context back to the generator, so the span is
// a child of the hook's ctx but the model call and actions do not run under
// it. Backend spans appear as siblings, not children.
type Tracer struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewTracer creates a tracing observer.
func NewTracer(tracer trace.Tracer) *Tracer {
	return &Tracer{
		tracer: tracer,
		spans:  make(map[string]trace.Span),
	}
}

func (t *Tracer) OnStepGenerationStarted(ctx context.Context, ev agent.StartedEvent) {
	_, span := t.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrRunID.String(ev.Run.ID()),
			AttrMessages.Int(len(ev.Messages)),
		),
	)

	t.mu.Lock()
	prev := t.spans[ev.Run.ID()]
	t.spans[ev.Run.ID()] = span
	t.mu.Unlock()

	if prev != nil {
		abort(prev)
	}
}

func (t *Tracer) OnStepGenerationFinished(_ context.Context, ev agent.FinishedEvent) {
	t.mu.Lock()
	span := t.spans[ev.Run.ID()]
	delete(t.spans, ev.Run.ID())
	t.mu.Unlock()

	if span == nil {
		return
	}

	span.SetAttributes(
		AttrStepID.String(ev.Step.ID()),
		AttrStepType.String(ev.Step.Type()),
		AttrStepSummary.String(ev.Step.Summary()),
	)
	switch st := ev.Step.State().(type) {
	case step.Succeeded:
		span.SetAttributes(AttrStepStatus.String(step.StatusSucceeded))
		span.SetStatus(codes.Ok, "")
	case step.Failed:
		span.SetAttributes(AttrStepStatus.String(step.StatusFailed))
		span.SetStatus(codes.Error, st.Summary)
	}
	span.End()
}

// Close ends all spans still open.
func (t *Tracer) Close() {
	t.mu.Lock()
	spans := t.spans
	t.spans = make(map[string]trace.Span)
	t.mu.Unlock()

	for _, span := range spans {
		abort(span)
	}
}

func abort(span trace.Span) {
	span.SetStatus(codes.Error, "step generation did not finish")
	span.End()
}
