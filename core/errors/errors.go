// Package errors provides the error types shared by the markup packages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrType indicates a value could not be used as text, or an argument
	// had the wrong kind (for example a non-sequence passed to Join).
	ErrType = errors.New("type error")
	// ErrFormat indicates a mismatch between format placeholders and arguments.
	ErrFormat = errors.New("format error")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// TypeError reports a value whose Go type cannot take part in an operation.
type TypeError struct {
	Op      string // Operation that rejected the value (e.g., "escape", "join")
	Type    string // Go type of the offending value
	Message string // Optional detail
	Err     error  // Underlying error, if any
}

func (e *TypeError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "cannot convert to text"
	}
	if e.Op != "" && e.Type != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, msg, e.Type)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", msg, e.Type)
	}
	return msg
}

// Unwrap reports ErrType and the underlying error, if any.
func (e *TypeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrType, e.Err}
	}
	return []error{ErrType}
}

// FormatError reports a placeholder that cannot be satisfied by the
// supplied arguments, or a malformed placeholder.
type FormatError struct {
	Index   int    // Byte offset of the directive in the format string, -1 if unknown
	Key     string // Mapping key, for %(key)s directives
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("format: %s: %q", e.Message, e.Key)
	case e.Index >= 0:
		return fmt.Sprintf("format: %s at index %d", e.Message, e.Index)
	default:
		return fmt.Sprintf("format: %s", e.Message)
	}
}

// Unwrap reports ErrFormat and the underlying error, if any.
func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap reports ErrInvalidInput and the underlying error, if any.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

// Unwrap reports ErrUnsupported and the underlying error, if any.
func (e *UnsupportedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnsupported, e.Err}
	}
	return []error{ErrUnsupported}
}

// Helper functions for creating common errors

// NewType creates a TypeError for a value of the given Go type.
func NewType(op string, v any, message string) *TypeError {
	return &TypeError{
		Op:      op,
		Type:    fmt.Sprintf("%T", v),
		Message: message,
	}
}

// NewFormat creates a FormatError located at a byte offset.
func NewFormat(index int, message string) *FormatError {
	return &FormatError{
		Index:   index,
		Message: message,
	}
}

// NewFormatKey creates a FormatError for a named mapping placeholder.
func NewFormatKey(key, message string) *FormatError {
	return &FormatError{
		Index:   -1,
		Key:     key,
		Message: message,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
