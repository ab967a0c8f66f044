package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrShopAlreadyQueued is returned when a refresh for the shop is still pending or running
	ErrShopAlreadyQueued = errors.New("feed refresh already queued for this shop")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrPermanentFailure marks executor errors that a retry cannot fix
	ErrPermanentFailure = errors.New("permanent job failure")
)

// Permanent wraps err so the scheduler does not retry the job.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{ErrPermanentFailure, e.err} }
