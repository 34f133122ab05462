package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Error reports one degenerate configuration field.
type Error struct {
	Field  string
	Reason string
}

// Invalid builds an *Error for field with a formatted reason.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalidConfig
}
