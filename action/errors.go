package action

import "fmt"

// ErrActionNotFound is returned when a model names an unregistered action.
type ErrActionNotFound struct {
	Type string
}

// Error returns a formatted error message including the action type.
func (e *ErrActionNotFound) Error() string {
	return fmt.Sprintf("action: unknown action %q", e.Type)
}

// ErrActionAlreadyRegistered is returned when registering a duplicate action type.
type ErrActionAlreadyRegistered struct {
	Type string
}

// Error returns a formatted error message including the duplicate action type.
func (e *ErrActionAlreadyRegistered) Error() string {
	return fmt.Sprintf("action: already registered: %s", e.Type)
}

// ErrInvalidInput wraps a failure to decode the parameters of an action request.
type ErrInvalidInput struct {
	Type string
	Err  error
}

// Error returns a formatted error message including the action type and cause.
func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("action: invalid input for %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ErrInvalidInput) Unwrap() error {
	return e.Err
}

// PanicError reports an action that panicked while creating its step.
type PanicError struct {
	Type  string
	Value any
}

// Error returns a formatted error message including the panic value.
func (e *PanicError) Error() string {
	return fmt.Sprintf("action: %s panicked: %v", e.Type, e.Value)
}
