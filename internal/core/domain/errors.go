package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the collection.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrConfiguration indicates missing credentials or an inconsistent setup.
	// Fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrDimensionMismatch indicates a vector does not match the collection dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Source Errors.

	// ErrSourceUnavailable indicates the connector cannot reach the platform.
	// Aborts the whole sync run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceEmpty indicates the target channel or stream could not be found.
	// Non-fatal: the sync run completes with nothing to do.
	ErrSourceEmpty = errors.New("source empty")

	// Collaborator Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider failed.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index failed.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrCompletionUnavailable indicates the completion provider failed.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrTransient marks a failure worth retrying (timeout, 429, 5xx).
	ErrTransient = errors.New("transient failure")
)

// ConfigurationError describes a specific configuration problem.
// It matches ErrConfiguration with errors.Is.
type ConfigurationError struct {
	// Field is the configuration key at fault.
	Field string

	// Reason explains what is wrong.
	Reason string
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsTransient returns true if the error is marked as retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
