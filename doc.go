// Package stepper is the execution core of an autonomous agent loop.
//
// Given a task and the steps an agent has already completed, stepper decides
// what the agent should do next: it builds a transcript, asks a language model
// for the next move, parses the answer into a structured action request,
// dispatches it to an action, and records the outcome as a new step.
//
// The root package holds the vocabulary shared by every subpackage:
//
//   - [Message] and [Role]: transcript entries
//   - [TextGenerator]: the request/response interface to a language model
//   - [Option]: per-request settings such as max tokens and temperature
//   - [Error]: categorized backend errors (transient, permanent, user input)
//
// # Packages
//
//   - agent: the next-step generator, runs, observers and the loop driver
//   - step: the immutable step record and its succeeded/failed state
//   - action: the action registry and typed tool actions
//   - format: parsing model output into action requests
//   - formatter: rendering successful step output back into the transcript
//   - runstore: append-only persistence of step histories
//   - observer: logging and OpenTelemetry tracing observers
//   - agui: streaming step lifecycle as AG-UI protocol events
//   - mcp: MCP server tools as actions, and actions as an MCP server
//   - retry: backoff for transient backend failures
//   - provider/openai, provider/anthropic, provider/google: text generators
//
// # Basic Usage
//
//	actions := action.NewRegistry(format.FlexibleJSON()).Add(
//	    action.Done(),
//	    action.MustTool("search", "Search the web", SearchInput{Query: "..."}, search),
//	)
//
//	gen, err := agent.NewNextStepGenerator(agent.Config{
//	    Role:          "You are a careful researcher.",
//	    Constraints:   "Be concise.",
//	    Actions:       actions,
//	    TextGenerator: retry.NewGenerator(openai.New(os.Getenv("OPENAI_API_KEY")), retry.DefaultConfig()),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	run := agent.NewRun("Find the population of Lisbon.")
//	result, err := agent.Loop(ctx, gen, run, agent.WithMaxSteps(8))
package stepper
