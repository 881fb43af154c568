package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spetersoncode/stepper/action"
)

// TimeInput selects how the current time is rendered.
type TimeInput struct {
	Format string `json:"format"` // rfc3339, unix or human
}

// TimeOutput is the result of the get_time action.
type TimeOutput struct {
	Time string `json:"time"`
}

// EchoInput is the input of the echo action.
type EchoInput struct {
	Message string `json:"message"`
}

// CalculateInput is the input of the calculate action.
type CalculateInput struct {
	Operation string  `json:"operation"` // add, subtract, multiply or divide
	A         float64 `json:"a"`
	B         float64 `json:"b"`
}

// CalculateOutput is the result of the calculate action.
type CalculateOutput struct {
	Result float64 `json:"result"`
}

// DemoActions returns small self-contained actions for trying the loop.
func DemoActions() []action.Action {
	return []action.Action{
		action.MustTool("get_time", "Get the current time.", TimeInput{Format: "human"}, currentTime),
		action.MustTool("echo", "Echo back the input message (useful for testing).", EchoInput{Message: "hello"}, echo),
		action.MustTool("calculate", "Perform basic arithmetic: add, subtract, multiply or divide.",
			CalculateInput{Operation: "add", A: 2, B: 3}, calculate),
	}
}

func currentTime(ctx context.Context, in TimeInput) (TimeOutput, string, error) {
	now := time.Now()

	var formatted string
	switch strings.ToLower(in.Format) {
	case "rfc3339":
		formatted = now.Format(time.RFC3339)
	case "unix":
		formatted = fmt.Sprintf("%d", now.Unix())
	default:
		formatted = now.Format("Monday, January 2, 2006 at 3:04 PM MST")
	}
	return TimeOutput{Time: formatted}, "the current time is " + formatted, nil
}

func echo(ctx context.Context, in EchoInput) (string, string, error) {
	return in.Message, "echoed " + fmt.Sprintf("%q", in.Message), nil
}

func calculate(ctx context.Context, in CalculateInput) (CalculateOutput, string, error) {
	var result float64

	switch in.Operation {
	case "add":
		result = in.A + in.B
	case "subtract":
		result = in.A - in.B
	case "multiply":
		result = in.A * in.B
	case "divide":
		if in.B == 0 {
			return CalculateOutput{}, "", fmt.Errorf("cannot divide by zero")
		}
		result = in.A / in.B
	default:
		return CalculateOutput{}, "", fmt.Errorf("unknown operation: %s", in.Operation)
	}

	return CalculateOutput{Result: result}, fmt.Sprintf("%s(%.6g, %.6g) = %.6g", in.Operation, in.A, in.B, result), nil
}
