// Package step defines the immutable record of one agent loop iteration.
//
// A [Step] is produced exactly once per iteration and never mutated after
// creation. Its outcome is a [State], a closed sum type with exactly two
// variants: [Succeeded] and [Failed]. Consumers switch on the concrete type:
//
//	switch st := s.State().(type) {
//	case step.Succeeded:
//	    // st.Output, st.Summary
//	case step.Failed:
//	    // st.Summary
//	}
package step

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Well-known step types. Action steps use the action's own type.
const (
	// TypeThought marks a step whose model output named no action.
	TypeThought = "thought"

	// TypeError marks a step synthesized from an action lookup or creation failure.
	TypeError = "error"

	// TypeDone marks the terminal step of a run.
	TypeDone = "done"
)

// State is the outcome of a step. The only implementations are
// [Succeeded] and [Failed].
type State interface {
	isState()
}

// Succeeded is the state of a step whose action completed.
// Output is opaque action-specific data and may be nil (e.g. a thought).
type Succeeded struct {
	Output  any
	Summary string
}

func (Succeeded) isState() {}

// HasOutput reports whether the step carries action output. A typed nil
// (nil slice, map, pointer or interface) counts as no output, matching what
// a step decoded from JSON holds.
func (s Succeeded) HasOutput() bool {
	if s.Output == nil {
		return false
	}
	v := reflect.ValueOf(s.Output)
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func:
		return !v.IsNil()
	}
	return true
}

// Failed is the state of a step whose action could not be completed.
type Failed struct {
	Summary string
}

func (Failed) isState() {}

// Step is one recorded outcome of an agent loop iteration.
type Step struct {
	id               string
	typ              string
	generatedText    string
	hasGeneratedText bool
	state            State
	createdAt        time.Time
}

// Option configures a step at construction time.
type Option func(*Step)

// WithGeneratedText attaches the raw model text that produced the step.
func WithGeneratedText(text string) Option {
	return func(s *Step) {
		s.generatedText = text
		s.hasGeneratedText = true
	}
}

// WithID overrides the generated step id. Used when restoring persisted steps.
func WithID(id string) Option {
	return func(s *Step) {
		s.id = id
	}
}

// WithCreatedAt overrides the creation time. Used when restoring persisted steps.
func WithCreatedAt(t time.Time) Option {
	return func(s *Step) {
		s.createdAt = t
	}
}

// New creates a step of the given type and state.
// A nil state is recorded as a succeeded step without output.
func New(typ string, state State, opts ...Option) *Step {
	if state == nil {
		state = Succeeded{}
	}
	s := &Step{
		id:        uuid.New().String(),
		typ:       typ,
		state:     state,
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewThought creates a step for model output that named no action.
func NewThought(generatedText, summary string) *Step {
	return New(TypeThought, Succeeded{Summary: summary}, WithGeneratedText(generatedText))
}

// NewError creates an error step carrying the failure detail.
func NewError(generatedText string, err error) *Step {
	summary := "unknown error"
	if err != nil {
		summary = err.Error()
	}
	return New(TypeError, Failed{Summary: summary}, WithGeneratedText(generatedText))
}

// ID returns the unique step identifier.
func (s *Step) ID() string { return s.id }

// Type returns the tag of the action (or thought/error) that produced the step.
func (s *Step) Type() string { return s.typ }

// GeneratedText returns the raw model text and whether it is present.
// It is absent only for steps synthesized without a model call.
func (s *Step) GeneratedText() (string, bool) {
	return s.generatedText, s.hasGeneratedText
}

// State returns the step outcome.
func (s *Step) State() State { return s.state }

// CreatedAt returns when the step was created.
func (s *Step) CreatedAt() time.Time { return s.createdAt }

// IsDone reports whether this step ends the run.
func (s *Step) IsDone() bool { return s.typ == TypeDone }

// Summary returns the summary of the step state, whichever variant it is.
func (s *Step) Summary() string {
	switch st := s.state.(type) {
	case Succeeded:
		return st.Summary
	case Failed:
		return st.Summary
	default:
		return ""
	}
}

// With returns a copy of the step with opts applied. The receiver is not modified.
func (s *Step) With(opts ...Option) *Step {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}
