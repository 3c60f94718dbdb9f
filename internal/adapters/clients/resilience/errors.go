package resilience

import "errors"

// Resilience errors describe why a command did not return the result of its
// run function. They are passed to the fallback as its cause.
var (
	// ErrTimeout is returned when the run function exceeds the command timeout.
	ErrTimeout = errors.New("command timed out")

	// ErrBreakerOpen is returned when the circuit breaker short-circuits the call.
	ErrBreakerOpen = errors.New("circuit breaker open")

	// ErrBulkheadFull is returned when every slot and queue position is taken.
	ErrBulkheadFull = errors.New("bulkhead full")

	// ErrRunPanic wraps the value recovered from a panicking run function.
	ErrRunPanic = errors.New("command run panicked")

	// ErrFallbackFailed wraps the error returned by a fallback.
	ErrFallbackFailed = errors.New("fallback failed")
)
