package catalog

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the response held zero records.
	ErrCodeNotFound ErrorCode = "LOOKUP_NOT_FOUND"

	// ErrCodeTransport indicates a non-2xx status or a failed request.
	ErrCodeTransport ErrorCode = "LOOKUP_TRANSPORT_ERROR"

	// ErrCodeImageLoad indicates the product image could not be loaded.
	ErrCodeImageLoad ErrorCode = "IMAGE_LOAD_ERROR"
)

// Error is returned by Lookup and ImageLoader.
type Error struct {
	Code       ErrorCode
	SKU        string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.SKU != "" {
		msg += fmt.Sprintf(" (sku=%s)", e.SKU)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}

// IsNotFound reports whether err is a zero-record lookup.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsTransportError reports whether err is a failed lookup request.
func IsTransportError(err error) bool { return hasCode(err, ErrCodeTransport) }

// IsImageLoadError reports whether err is a failed image load.
func IsImageLoadError(err error) bool { return hasCode(err, ErrCodeImageLoad) }

// Outcome is the three-way result of a lookup.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeTransportError
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "transport_error"
	}
}

// Classify maps a Fetch error to its outcome. Unknown errors count as
// transport errors.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeFound
	case IsNotFound(err):
		return OutcomeNotFound
	default:
		return OutcomeTransportError
	}
}
