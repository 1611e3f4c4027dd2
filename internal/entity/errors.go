package entity

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrValidation       = errors.New("validation failed")
	ErrMalformedRequest = errors.New("malformed request")
)

// ValidationError - нарушение ограничения конкретного поля.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MalformedError - ввод, который не удалось разобрать.
func MalformedError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRequest, fmt.Sprintf(format, args...))
}
