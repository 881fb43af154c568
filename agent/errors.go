package agent

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing or invalid generator configuration field.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("agent: missing required configuration: %s", e.Field)
}

// Sentinel errors.
var (
	// ErrNilRun is returned when a generation is requested without a run.
	ErrNilRun = errors.New("agent: run is required")

	// ErrNilStep is reported (as an error step) when an action returns neither
	// a step nor an error.
	ErrNilStep = errors.New("agent: action returned no step")
)
