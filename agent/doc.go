// Package agent decides what an agent should do next.
//
// A [NextStepGenerator] rebuilds the conversation transcript from the run's
// instructions and its completed steps, asks a [stepper.TextGenerator] for the
// next response, parses it with the action registry's format, and turns the
// result into exactly one new [step.Step]:
//
//   - no action named: a thought step whose summary is the free text
//   - unknown action, or the action failed: an error step the model sees on
//     its next turn as "ERROR:\n<summary>"
//   - otherwise: the step built by the action
//
// Backend failures, unparseable output and formatter validation errors are
// returned to the caller instead.
//
// # Basic Usage
//
//	gen, err := agent.NewNextStepGenerator(agent.Config{
//	    Role:          "You are a careful researcher.",
//	    Constraints:   "Be concise.",
//	    Actions:       registry,
//	    TextGenerator: client,
//	}, agent.WithMaxTokens(1024))
//
//	run := agent.NewRun("Find the population of Lisbon.",
//	    agent.WithObserver(observer.NewLogger(slog.Default())))
//
//	result, err := agent.Loop(ctx, gen, run, agent.WithMaxSteps(8))
//
// # Observers
//
// Observers attached to a [Run] are notified synchronously before every model
// call and after every produced step, including error steps. Use [Observers]
// or [Run.Subscribe] to attach several.
//
// # Termination Conditions
//
// [Loop] stops when any of these conditions are met:
//
//   - A done step is produced (TerminationDone)
//   - MaxSteps is reached (TerminationMaxSteps)
//   - Timeout is exceeded (TerminationTimeout)
//   - Context is cancelled (TerminationCancelled)
//   - A fatal error occurs (TerminationError)
package agent
