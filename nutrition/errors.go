package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputIncomplete is matched by *InputIncompleteError.
	ErrInputIncomplete = errors.New("input incomplete")

	// ErrConstraintViolation is matched by *ConstraintViolationError.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidInput is matched by *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputIncompleteError lists required fields that were absent. The engine
// never guesses a missing biometric.
type InputIncompleteError struct {
	Missing []string
}

func (e *InputIncompleteError) Error() string {
	return fmt.Sprintf("cannot calculate: missing %s", strings.Join(e.Missing, ", "))
}

func (e *InputIncompleteError) Is(target error) bool { return target == ErrInputIncomplete }

// ConstraintViolationError rejects coach-supplied values that contradict
// each other, such as custom macros whose calories do not add up.
type ConstraintViolationError struct {
	Field   string
	Message string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConstraintViolationError) Is(target error) bool { return target == ErrConstraintViolation }

// ValidationError reports a single out-of-range or unknown input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
