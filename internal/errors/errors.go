package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the transfer scheduling application
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidStatus   = errors.New("invalid transfer status")
	ErrNoApplicableFee = errors.New("no applicable fee exists for this transfer date and amount combination")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NotFoundError carries the key of the missing record.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NewNotFoundError(entity string, id any) error {
	return &NotFoundError{
		Entity: entity,
		ID:     fmt.Sprint(id),
	}
}

type StoreError struct {
	Operation string
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during '%s': %v", e.Operation, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewStoreError(operation string, cause error) error {
	return &StoreError{
		Operation: operation,
		Cause:     cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrNoApplicableFee)
}
