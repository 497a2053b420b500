package cart

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes cart errors.
type ErrorCode string

// ErrCodeSubmit indicates the checkout proxy rejected or never received
// the cart.
const ErrCodeSubmit ErrorCode = "CHECKOUT_SUBMIT_ERROR"

// SubmitError is returned by a Submitter. It carries what is known about
// the failed exchange for logging.
type SubmitError struct {
	Code       ErrorCode
	StatusCode int
	Response   string
	Err        error
}

// Error implements the error interface.
func (e *SubmitError) Error() string {
	msg := string(e.Code)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsSubmitError reports whether err is a failed checkout submission.
func IsSubmitError(err error) bool {
	var se *SubmitError
	return errors.As(err, &se) && se.Code == ErrCodeSubmit
}
