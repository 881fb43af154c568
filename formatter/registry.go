// Package formatter renders the output of succeeded steps into text the model
// reads on its next turn.
//
// Formatters are registered per step type. Before a formatter runs, the
// registry validates the step's {summary, output} pair against the
// formatter's declared JSON Schema; a mismatch is a [*ValidationError], which
// signals a programming error rather than a recoverable action failure.
package formatter

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spetersoncode/stepper/step"
)

// Result is the value handed to a formatter.
type Result struct {
	Summary string `json:"summary"`
	Output  any    `json:"output"`
}

// Formatter renders a succeeded step's result.
type Formatter interface {
	// OutputSchema describes the expected {summary, output} object.
	// A nil schema disables validation.
	OutputSchema() *jsonschema.Schema

	// FormatResult renders the result as transcript text.
	FormatResult(Result) (string, error)
}

type entry struct {
	formatter Formatter
	schema    *jsonschema.Resolved
}

// Registry maps step types to formatters. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty formatter registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register associates a formatter with a step type. The formatter's schema is
// resolved up front so that invalid schemas fail at registration.
func (r *Registry) Register(stepType string, f Formatter) error {
	if f == nil {
		return fmt.Errorf("formatter: nil formatter for %s", stepType)
	}

	var resolved *jsonschema.Resolved
	if schema := f.OutputSchema(); schema != nil {
		var err error
		resolved, err = schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("formatter: resolve schema for %s: %w", stepType, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[stepType]; exists {
		return fmt.Errorf("formatter: already registered: %s", stepType)
	}
	r.entries[stepType] = entry{formatter: f, schema: resolved}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(stepType string, f Formatter) *Registry {
	if err := r.Register(stepType, f); err != nil {
		panic(err)
	}
	return r
}

// Get returns the formatter for a step type, if any.
func (r *Registry) Get(stepType string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[stepType]
	return e.formatter, ok
}

// Len returns the number of registered formatters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Format validates and renders a succeeded state with the formatter
// registered for stepType. The boolean is false when no formatter is
// registered, in which case nothing is validated.
func (r *Registry) Format(stepType string, st step.Succeeded) (string, bool, error) {
	r.mu.RLock()
	e, ok := r.entries[stepType]
	r.mu.RUnlock()
	if !ok {
		return "", false, nil
	}

	result := Result{Summary: st.Summary, Output: st.Output}
	if e.schema != nil {
		instance, err := toInstance(result)
		if err != nil {
			return "", true, &ValidationError{StepType: stepType, Err: err}
		}
		if err := e.schema.Validate(instance); err != nil {
			return "", true, &ValidationError{StepType: stepType, Err: err}
		}
	}

	text, err := e.formatter.FormatResult(result)
	if err != nil {
		return "", true, fmt.Errorf("formatter: format %s result: %w", stepType, err)
	}
	return text, true, nil
}

// Default renders a succeeded state as plain JSON {"summary": ..., "output": ...}.
func Default(st step.Succeeded) (string, error) {
	data, err := json.Marshal(Result{Summary: st.Summary, Output: st.Output})
	if err != nil {
		return "", fmt.Errorf("formatter: encode result: %w", err)
	}
	return string(data), nil
}

// ValidationError reports a step result that does not match the formatter's
// declared output schema.
type ValidationError struct {
	StepType string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("formatter: %s result does not match output schema: %v", e.StepType, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// toInstance converts a result into the generic JSON value a schema validates.
func toInstance(result Result) (any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, err
	}
	return instance, nil
}
