package agui

import (
	"context"
	"sync"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/stepper/agent"
)

// Sink receives AG-UI events, typically writing them to an SSE stream.
type Sink func(events.Event) error

// Observer is an agent.Observer that streams the step lifecycle to a sink.
// Observer hooks cannot fail, so the first sink error is kept and later
// events are dropped; check Err after the run.
type Observer struct {
	mapper *Mapper
	sink   Sink

	mu  sync.Mutex
	err error
}

// NewObserver creates an observer writing events for one run to sink.
// Empty ids are generated.
func NewObserver(sink Sink, threadID, runID string) *Observer {
	return &Observer{
		mapper: NewMapper(threadID, runID),
		sink:   sink,
	}
}

// Mapper returns the underlying mapper.
func (o *Observer) Mapper() *Mapper {
	return o.mapper
}

// Start emits RUN_STARTED.
func (o *Observer) Start() error {
	o.emit(o.mapper.RunStarted())
	return o.Err()
}

// Finish emits RUN_FINISHED, or RUN_ERROR when err is not nil.
func (o *Observer) Finish(err error) error {
	if err != nil {
		o.emit(o.mapper.RunError(err))
	} else {
		o.emit(o.mapper.RunFinished())
	}
	return o.Err()
}

func (o *Observer) OnStepGenerationStarted(_ context.Context, ev agent.StartedEvent) {
	o.emit(o.mapper.StepStarted(ev)...)
}

func (o *Observer) OnStepGenerationFinished(_ context.Context, ev agent.FinishedEvent) {
	o.emit(o.mapper.StepFinished(ev)...)
}

// Err returns the first sink error, if any.
func (o *Observer) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Observer) emit(evs ...events.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ev := range evs {
		if o.err != nil {
			return
		}
		o.err = o.sink(ev)
	}
}
