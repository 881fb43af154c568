package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

// ToolFunc executes a typed action. It returns the step output and a short
// summary the model will read.
type ToolFunc[I, O any] func(ctx context.Context, input I) (O, string, error)

// ToolAction is an action backed by a typed function. Parameters chosen by the
// model are decoded into I using JSON field names.
type ToolAction[I, O any] struct {
	typ         string
	description string
	example     map[string]any
	fn          ToolFunc[I, O]
}

// Tool creates a typed action. The example input is rendered into the
// instructions so the model sees the expected parameters.
//
// Example:
//
//	type SearchInput struct {
//	    Query string `json:"query"`
//	}
//
//	search, err := action.Tool("search", "Search the web for a query.",
//	    SearchInput{Query: "population of Lisbon"},
//	    func(ctx context.Context, in SearchInput) ([]string, string, error) {
//	        results, err := web.Search(ctx, in.Query)
//	        return results, fmt.Sprintf("found %d results", len(results)), err
//	    })
func Tool[I, O any](typ, description string, example I, fn ToolFunc[I, O]) (*ToolAction[I, O], error) {
	if typ == "" {
		return nil, errors.New("action: tool type is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("action: tool %s has no function", typ)
	}

	params, err := exampleParams(example)
	if err != nil {
		return nil, fmt.Errorf("action: tool %s example: %w", typ, err)
	}

	return &ToolAction[I, O]{
		typ:         typ,
		description: description,
		example:     params,
		fn:          fn,
	}, nil
}

// MustTool is like Tool but panics on error.
func MustTool[I, O any](typ, description string, example I, fn ToolFunc[I, O]) *ToolAction[I, O] {
	a, err := Tool(typ, description, example, fn)
	if err != nil {
		panic(err)
	}
	return a
}

func (t *ToolAction[I, O]) Type() string        { return t.typ }
func (t *ToolAction[I, O]) Description() string { return t.description }

func (t *ToolAction[I, O]) InputExample() map[string]any {
	out := make(map[string]any, len(t.example))
	for k, v := range t.example {
		out[k] = v
	}
	return out
}

// CreateStep decodes the parameters and runs the function.
func (t *ToolAction[I, O]) CreateStep(ctx context.Context, generatedText string, input format.Parsed) (*step.Step, error) {
	var in I
	if err := input.Decode(&in); err != nil {
		return nil, &ErrInvalidInput{Type: t.typ, Err: err}
	}

	out, summary, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}

	return step.New(t.typ, step.Succeeded{Output: out, Summary: summary},
		step.WithGeneratedText(generatedText)), nil
}

// exampleParams converts a typed example into the map rendered by a format.
func exampleParams(example any) (map[string]any, error) {
	data, err := json.Marshal(example)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("must encode as a JSON object: %w", err)
	}
	return params, nil
}
