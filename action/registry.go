// Package action maps action identifiers chosen by the model to handlers that
// produce steps.
//
// A [Registry] owns the set of available actions and the [format.Format] used
// both to describe them to the model and to parse the model's answer.
//
//	registry := action.NewRegistry(format.FlexibleJSON()).Add(
//	    action.Done(),
//	    action.MustTool("search", "Search the web for a query.",
//	        SearchInput{Query: "population of Lisbon"},
//	        func(ctx context.Context, in SearchInput) ([]string, string, error) {
//	            results, err := search(ctx, in.Query)
//	            return results, fmt.Sprintf("found %d results", len(results)), err
//	        }),
//	)
package action

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

// Action is a named capability the agent can invoke.
type Action interface {
	// Type is the identifier the model uses to request this action.
	Type() string

	// Description tells the model what the action does.
	Description() string

	// InputExample is a sample parameter set rendered into the instructions.
	InputExample() map[string]any

	// CreateStep executes the action for one model request and returns the
	// resulting step. Any error is reported back to the model as an error step.
	CreateStep(ctx context.Context, generatedText string, input format.Parsed) (*step.Step, error)
}

// Registry maps action identifiers to actions. It is safe for concurrent use,
// but is expected to stay unchanged while a run is in progress.
type Registry struct {
	mu      sync.RWMutex
	format  format.Format
	actions map[string]Action
	order   []string
}

// NewRegistry creates a registry using f to describe and parse actions and
// registers the given actions. A nil format defaults to [format.FlexibleJSON].
// Panics if two actions share a type.
func NewRegistry(f format.Format, actions ...Action) *Registry {
	if f == nil {
		f = format.FlexibleJSON()
	}
	r := &Registry{
		format:  f,
		actions: make(map[string]Action),
	}
	return r.Add(actions...)
}

// Register adds an action to the registry.
// Returns an error if an action with the same type is already registered.
func (r *Registry) Register(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	typ := a.Type()
	if _, exists := r.actions[typ]; exists {
		return &ErrActionAlreadyRegistered{Type: typ}
	}
	r.actions[typ] = a
	r.order = append(r.order, typ)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(a Action) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Add registers one or more actions and returns the registry for chaining.
// Panics if any action type is already registered.
func (r *Registry) Add(actions ...Action) *Registry {
	for _, a := range actions {
		r.MustRegister(a)
	}
	return r
}

// Get looks up an action by type.
// Returns *ErrActionNotFound for unknown identifiers.
func (r *Registry) Get(typ string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[typ]
	if !ok {
		return nil, &ErrActionNotFound{Type: typ}
	}
	return a, nil
}

// Format returns the parser/formatter shared by all actions.
func (r *Registry) Format() format.Format {
	return r.format
}

// Types returns the registered action types in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, len(r.order))
	copy(types, r.order)
	return types
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}

// AvailableActionInstructions renders the response format followed by one
// block per action, in registration order.
func (r *Registry) AvailableActionInstructions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	b.WriteString(r.format.Description())
	b.WriteString("\n\n")
	b.WriteString("AVAILABLE ACTIONS")

	if len(r.order) == 0 {
		b.WriteString("\n\nNo actions are available.")
		return b.String()
	}

	for _, typ := range r.order {
		a := r.actions[typ]
		fmt.Fprintf(&b, "\n\n### %s\n%s\nSyntax:\n%s", typ, a.Description(), r.format.Example(typ, a.InputExample()))
	}
	return b.String()
}
