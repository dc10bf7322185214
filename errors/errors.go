/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a flag, definition or storage is not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a name is registered twice
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnly is returned when a write targets a storage without write capability
	ErrReadOnly = errors.New("attempting to write to read-only storage")

	// ErrStorageFailure is returned when a storage backend operation fails
	ErrStorageFailure = errors.New("storage operation failed")
)

// NotFoundError represents an error when something is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a name is already taken
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ReadOnlyError represents a write attempted on a storage that cannot be written
type ReadOnlyError struct {
	Storage   string
	Operation string
	Key       string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("attempting to write to read-only storage %q (%s %q)", e.Storage, e.Operation, e.Key)
}

func (e *ReadOnlyError) Is(target error) bool {
	return target == ErrReadOnly
}

// StorageError wraps a failure reported by a storage backend
type StorageError struct {
	Storage   string
	Operation string
	Key       string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %q %s %q: %v", e.Storage, e.Operation, e.Key, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Type: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Type: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewReadOnlyError creates a new ReadOnlyError
func NewReadOnlyError(storage, operation, key string) error {
	return &ReadOnlyError{Storage: storage, Operation: operation, Key: key}
}

// NewStorageError creates a new StorageError wrapping err
func NewStorageError(storage, operation, key string, err error) error {
	return &StorageError{Storage: storage, Operation: operation, Key: key, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsReadOnly checks if an error is a read-only storage error
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// IsStorageFailure checks if an error came from a storage backend
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
