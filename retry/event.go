package retry

import "time"

// EventType identifies the kind of event occurring during retry execution.
type EventType string

const (
	// EventAttemptStart fires before each attempt.
	EventAttemptStart EventType = "attempt_start"

	// EventAttemptFailed fires after a failed attempt.
	EventAttemptFailed EventType = "attempt_failed"

	// EventRetrying fires before sleeping between attempts.
	EventRetrying EventType = "retrying"

	// EventSuccess fires when an attempt succeeds.
	EventSuccess EventType = "success"

	// EventExhausted fires when all attempts failed with transient errors.
	EventExhausted EventType = "exhausted"
)

// Event describes one transition of a retried call.
type Event struct {
	Type        EventType
	Attempt     int // 1-indexed
	MaxAttempts int
	Error       error
	Delay       time.Duration // set for EventRetrying
	Retryable   bool
	Timestamp   time.Time
}

// emit sends an event to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
	}
}
