package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/runstore"
	"github.com/spetersoncode/stepper/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopActions() *action.Registry {
	return action.NewRegistry(nil, searchAction(), action.Done())
}

func TestLoop_Done(t *testing.T) {
	gen := respond(
		"I should search for X first.",
		"{\"action\": \"search\", \"query\": \"X\"}",
		"{\"action\": \"done\", \"result\": \"X is 42\"}",
	)
	g := newGenerator(t, gen, loopActions())
	store := runstore.NewMemory()
	run := NewRun("Find X", WithRunID("run-1"), WithStore(store))

	result, err := Loop(context.Background(), g, run)

	require.NoError(t, err)
	assert.Equal(t, TerminationDone, result.Termination)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, []string{step.TypeThought, "search", step.TypeDone},
		[]string{result.Steps[0].Type(), result.Steps[1].Type(), result.Steps[2].Type()})
	assert.Equal(t, "X is 42", result.Last().Summary())
	assert.Equal(t, result.Steps, run.Steps())

	stored, err := store.Steps(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestLoop_MaxSteps(t *testing.T) {
	gen := respond("thinking", "still thinking", "more thinking")
	g := newGenerator(t, gen, loopActions())

	result, err := Loop(context.Background(), g, NewRun("task"), WithMaxSteps(2))

	require.NoError(t, err)
	assert.Equal(t, TerminationMaxSteps, result.Termination)
	assert.Len(t, result.Steps, 2)
	assert.Len(t, gen.calls, 2)
}

func TestLoop_ErrorStepsDoNotStopTheLoop(t *testing.T) {
	gen := respond(`{"action": "fly"}`, `{"action": "done", "result": "ok"}`)
	g := newGenerator(t, gen, loopActions())

	result, err := Loop(context.Background(), g, NewRun("task"))

	require.NoError(t, err)
	assert.Equal(t, TerminationDone, result.Termination)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, step.TypeError, result.Steps[0].Type())
	assert.Equal(t, stepper.NewSystemMessage("ERROR:\naction: unknown action \"fly\""), gen.calls[1][3])
}

func TestLoop_FatalError(t *testing.T) {
	backendErr := errors.New("backend down")
	gen := &scriptedGenerator{responses: []scriptedResponse{{text: "thinking"}, {err: backendErr}}}
	g := newGenerator(t, gen, loopActions())

	result, err := Loop(context.Background(), g, NewRun("task"))

	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, TerminationError, result.Termination)
	assert.ErrorIs(t, result.Error, backendErr)
	assert.Len(t, result.Steps, 1)
}

func TestLoop_StoreFailure(t *testing.T) {
	g := newGenerator(t, respond("thinking"), loopActions())

	result, err := Loop(context.Background(), g, NewRun("task", WithStore(failingStore{})))

	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, TerminationError, result.Termination)
	assert.Empty(t, result.Steps)
}

func TestLoop_Timeout(t *testing.T) {
	gen := stepper.TextGeneratorFunc(func(ctx context.Context, _ []stepper.Message, _ ...stepper.Option) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	g := newGenerator(t, gen, loopActions())

	result, err := Loop(context.Background(), g, NewRun("task"), WithTimeout(20*time.Millisecond))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, TerminationTimeout, result.Termination)
}

func TestLoop_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := respond("thinking")
	g := newGenerator(t, gen, loopActions())

	result, err := Loop(ctx, g, NewRun("task"))

	require.NoError(t, err)
	assert.Equal(t, TerminationCancelled, result.Termination)
	assert.Empty(t, gen.calls)
}

func TestLoop_InvalidArguments(t *testing.T) {
	_, err := Loop(context.Background(), nil, NewRun("task"))
	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)

	_, err = Loop(context.Background(), newGenerator(t, respond(), nil), nil)
	assert.ErrorIs(t, err, ErrNilRun)
}

func TestApplyLoopOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o := ApplyLoopOptions()
		assert.Equal(t, 10, o.MaxSteps)
		assert.Zero(t, o.Timeout)
	})

	t.Run("custom", func(t *testing.T) {
		o := ApplyLoopOptions(WithMaxSteps(3), WithTimeout(time.Minute))
		assert.Equal(t, 3, o.MaxSteps)
		assert.Equal(t, time.Minute, o.Timeout)
	})
}

func TestTerminationReason_Constants(t *testing.T) {
	assert.Equal(t, TerminationReason("done"), TerminationDone)
	assert.Equal(t, TerminationReason("max_steps"), TerminationMaxSteps)
	assert.Equal(t, TerminationReason("timeout"), TerminationTimeout)
	assert.Equal(t, TerminationReason("cancelled"), TerminationCancelled)
	assert.Equal(t, TerminationReason("error"), TerminationError)
}

// ctxStore fails appends whose context has ended, like a database would.
type ctxStore struct {
	*runstore.Memory
}

func (s ctxStore) Append(ctx context.Context, runID string, st *step.Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Memory.Append(ctx, runID, st)
}

func TestLoop_CancelledDuringActionRecordsStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := funcAction{typ: "slow", fn: func(ctx context.Context, _ string, _ format.Parsed) (*step.Step, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	g := newGenerator(t, respond(`{"action": "slow"}`), action.NewRegistry(nil, slow))
	obs := &recordingObserver{}
	store := ctxStore{runstore.NewMemory()}
	run := NewRun("task", WithRunID("run-1"), WithStore(store), WithObserver(obs))

	result, err := Loop(ctx, g, run)

	require.NoError(t, err)
	assert.Equal(t, TerminationCancelled, result.Termination)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, step.TypeError, result.Steps[0].Type())
	require.Len(t, obs.finished, 1)
	assert.Equal(t, []*step.Step{obs.finished[0].Step}, run.Steps())

	stored, err := store.Steps(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
