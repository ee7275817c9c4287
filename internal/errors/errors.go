// Package errors defines common errors for the test runner
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownProperty is returned when a test case declares a property
	// outside the known set
	ErrUnknownProperty = errors.New("unknown test case property")

	// ErrBadValue is returned when a known property carries a value that
	// fails its field-specific grammar
	ErrBadValue = errors.New("invalid property value")

	// ErrNoTestPrograms is returned when no test programs are configured to run
	ErrNoTestPrograms = errors.New("no test programs to run")

	// ErrListFailed is returned when a test program's case list cannot be obtained
	ErrListFailed = errors.New("failed to list test cases")

	// ErrConfigFileNotFound is returned when the suite configuration file
	// cannot be found
	ErrConfigFileNotFound = errors.New("suite configuration file not found")
)

// FormatError represents a parse-time failure while building test case
// metadata from raw properties. It is fatal to constructing that one
// test case; check-time requirement failures are never reported this way.
type FormatError struct {
	// Base error
	Err error

	// Human-readable message explaining what went wrong
	Message string

	// Key is the property key being parsed when the error occurred
	Key string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the error unwrapping interface
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements the error checking interface
func (e *FormatError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewUnknownPropertyError creates an error for a property key outside the
// known set
func NewUnknownPropertyError(key string) *FormatError {
	return &FormatError{
		Err:     ErrUnknownProperty,
		Message: fmt.Sprintf("unknown test case property '%s'", key),
		Key:     key,
	}
}

// NewBadValueError creates an error for a known property whose value does
// not match its grammar
func NewBadValueError(key, value, reason string) *FormatError {
	return &FormatError{
		Err:     ErrBadValue,
		Message: fmt.Sprintf("invalid value '%s' for property '%s': %s", value, key, reason),
		Key:     key,
	}
}
