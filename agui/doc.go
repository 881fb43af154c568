// Package agui streams agent step generation to AG-UI compatible frontends.
//
// AG-UI (Agent-User Interface) is an open, lightweight, event-based protocol
// that standardizes how AI agents connect to user-facing applications. This
// package maps the step lifecycle reported by agent observers onto AG-UI
// events.
//
// # Overview
//
// This package provides:
//   - [Mapper]: converts step lifecycle notifications into AG-UI events
//   - [Observer]: an agent.Observer that writes mapped events to a sink
//   - Message conversion utilities: [ToMessages], [FromMessages]
//   - [RunAgentInput]: the AG-UI request, prepared into task instructions
//
// The package does NOT provide HTTP handlers or transport implementations.
// Users write events with the AG-UI SDK's SSE writer or their preferred
// transport.
//
// # Usage
//
//	obs := agui.NewObserver(func(ev events.Event) error {
//	    return sse.WriteEvent(ctx, w, ev)
//	}, threadID, runID)
//
//	run := agent.NewRun(instructions, agent.WithObserver(obs))
//
//	obs.Start()
//	result, err := agent.Loop(ctx, gen, run)
//	obs.Finish(err)
//
// # Event Mapping
//
// Each step generation becomes one AG-UI step:
//
//   - generation started → STEP_STARTED
//   - step produced → TEXT_MESSAGE_START, TEXT_MESSAGE_CONTENT (generated
//     text), TEXT_MESSAGE_END, STATE_SNAPSHOT (the step record), STEP_FINISHED
//
// # Thread Safety
//
// A Mapper is NOT safe for concurrent use; an Observer serializes access to
// its mapper and sink. Message conversion functions are stateless.
package agui
