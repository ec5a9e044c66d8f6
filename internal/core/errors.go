package core

import (
	"errors"
	"fmt"
)

// Rejection reasons carried by InvalidInputError.
const (
	ReasonEmpty               = "empty"
	ReasonTooLong             = "too_long"
	ReasonUnsupportedLanguage = "unsupported_language"
)

// ErrReviewNotFound is returned by the store when a review ID does not
// exist. Handlers map it to a 404, distinct from other store failures.
var ErrReviewNotFound = errors.New("review not found")

// ErrStorage marks failures that happened after a review was successfully
// generated, so callers can tell "could not generate" apart from
// "generated but could not save".
var ErrStorage = errors.New("storage failure")

// InvalidInputError is a caller error detected before any remote call.
// It is never retried.
type InvalidInputError struct {
	Reason  string
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// GatewayError is the terminal failure of a model invocation: the retry
// budget was exhausted or a non-retriable condition was hit. It carries
// the last underlying cause for diagnostics.
type GatewayError struct {
	Attempts int
	LastErr  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("model invocation failed after %d attempt(s): %v", e.Attempts, e.LastErr)
}

func (e *GatewayError) Unwrap() error {
	return e.LastErr
}
