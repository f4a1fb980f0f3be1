package domain

import "errors"

var (
	// ErrResourceUnavailable is returned when no browser session became
	// free within the acquire timeout.
	ErrResourceUnavailable = errors.New("no browser session available")

	// ErrExecutionTimeout is returned when the executor exceeded the
	// per-job deadline.
	ErrExecutionTimeout = errors.New("generation timed out")

	// ErrRetryExhausted is returned when a job failed its final attempt.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrBatchActive is returned when starting a batch on a coordinator
	// that is already running one.
	ErrBatchActive = errors.New("batch generation already in progress")

	// ErrBatchNotFound is returned when a batch id is not registered.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrNoPendingJobs is returned when a batch is started with an empty job list.
	ErrNoPendingJobs = errors.New("no pending jobs")

	// ErrUnknownPlatform is returned when no executor is registered under
	// the requested platform name.
	ErrUnknownPlatform = errors.New("unknown generation platform")
)

// ExecutionError wraps a domain-level executor failure (for example no
// artifact was produced) so callers can distinguish it from timeouts.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return "execution failed: " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError wraps err as a domain-level execution failure.
func NewExecutionError(err error) error {
	return &ExecutionError{Err: err}
}
