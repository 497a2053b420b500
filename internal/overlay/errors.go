package overlay

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes overlay errors.
type ErrorCode string

const (
	// ErrCodeDuplicate indicates a name was registered twice. This is a
	// wiring bug and fatal at startup.
	ErrCodeDuplicate ErrorCode = "DUPLICATE_OVERLAY"

	// ErrCodeUnknown indicates an operation on a name never registered.
	ErrCodeUnknown ErrorCode = "UNKNOWN_OVERLAY"
)

// Error is returned by Manager operations.
type Error struct {
	Code ErrorCode
	Name string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %q", e.Code, e.Name)
}

// IsDuplicate reports whether err is a duplicate registration error.
func IsDuplicate(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Code == ErrCodeDuplicate
}

// IsUnknown reports whether err names an unregistered overlay.
func IsUnknown(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Code == ErrCodeUnknown
}
