/*
Package errors provides semantic error types for the flagstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound       = errors.New("not found")
	    ErrAlreadyExists  = errors.New("already exists")
	    ErrInvalidInput   = errors.New("invalid input")
	    ErrReadOnly       = errors.New("attempting to write to read-only storage")
	    ErrStorageFailure = errors.New("storage operation failed")
	)

Usage:

	// Bulk writes keep going when a backend fails and report every failure
	err := resolver.SetMany(ctx, values)
	if errors.IsStorageFailure(err) {
	    log.Printf("some overrides were not persisted: %v", err)
	}

	// Create typed errors
	err := errors.NewNotFoundError("storage", "remote")
	err := errors.NewValidationError("default", "unsupported value type float64")
	err := errors.NewStorageError("local", "set", "dark_mode", cause)

StorageError implements Unwrap, so the backend error stays reachable with
errors.As. Misconfiguration (read-only targets, unknown storage names) is
reported through the resolver's logger rather than returned.
*/
package errors
