package action

import (
	"context"

	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

type doneAction struct{}

// Done returns the built-in terminal action. Its step has type [step.TypeDone]
// and a summary taken from the "result" parameter, falling back to the free
// text of the response.
func Done() Action {
	return doneAction{}
}

func (doneAction) Type() string { return step.TypeDone }

func (doneAction) Description() string {
	return "Indicate that the task is complete and report the final result."
}

func (doneAction) InputExample() map[string]any {
	return map[string]any{"result": "the final answer"}
}

func (doneAction) CreateStep(_ context.Context, generatedText string, input format.Parsed) (*step.Step, error) {
	summary := input.String("result")
	if summary == "" {
		summary = input.FreeText
	}
	return step.New(step.TypeDone, step.Succeeded{Summary: summary},
		step.WithGeneratedText(generatedText)), nil
}
