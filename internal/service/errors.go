package service

import (
	"errors"
	"fmt"
)

// The service error taxonomy: InvalidStateError for precondition failures
// the caller can correct, ErrConflict for exhausted transaction retries
// the caller should simply retry, and everything else is unexpected and
// surfaced opaquely by the transport layer.

// InvalidStateError reports a violated precondition with a human-readable
// reason safe to show to the caller.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

func invalidState(format string, args ...interface{}) error {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidState reports whether err is a precondition failure.
func IsInvalidState(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// ErrConflict is returned when concurrent activity on the same game
// exhausted the store's transaction retries. Retryable.
var ErrConflict = errors.New("unable to apply the update due to high activity, please try again")

// errNoop signals from inside a transaction body that the phase already
// advanced and the operation should succeed without doing anything.
var errNoop = errors.New("phase already advanced")
