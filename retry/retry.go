package retry

import (
	"context"
	"time"
)

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempts are exhausted. Backoff waits stop early when ctx is done.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return run(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports progress on events.
// Events are sent non-blocking; if the channel is full, events are dropped.
// A nil channel disables reporting.
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	return run(ctx, cfg, func(e Event) { emit(events, e) }, fn)
}

func run[T any](ctx context.Context, cfg Config, notify func(Event), fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	report := func(e Event) {
		if notify == nil {
			return
		}
		e.MaxAttempts = cfg.attempts()
		e.Timestamp = time.Now()
		notify(e)
	}

	maxAttempts := cfg.attempts()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		report(Event{Type: EventAttemptStart, Attempt: attempt + 1})

		result, err := fn()
		if err == nil {
			report(Event{Type: EventSuccess, Attempt: attempt + 1})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)
		report(Event{Type: EventAttemptFailed, Attempt: attempt + 1, Error: err, Retryable: retryable})

		if !retryable || ctx.Err() != nil {
			return zero, err
		}

		if attempt < maxAttempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			report(Event{Type: EventRetrying, Attempt: attempt + 1, Error: err, Delay: delay})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	report(Event{Type: EventExhausted, Attempt: maxAttempts, Error: lastErr})
	return zero, lastErr
}
