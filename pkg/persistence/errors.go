// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrRunSummaryNotFound indicates no run summary exists for the given id.
	ErrRunSummaryNotFound = errors.New("run summary not found")

	// ErrStorefrontProductNotFound indicates the catalog store has no row for
	// the given storefront product id.
	ErrStorefrontProductNotFound = errors.New("storefront product not found")
)

// StoreError wraps storage errors with the operation and key being accessed.
type StoreError struct {
	Op  string // Operation being performed (e.g., "ListActiveLinks", "InsertSnapshots")
	Key string // Row identifier if applicable
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a store error with context.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsRunSummaryNotFound checks if an error indicates a missing run summary.
func IsRunSummaryNotFound(err error) bool {
	return errors.Is(err, ErrRunSummaryNotFound)
}

// IsStorefrontProductNotFound checks if an error indicates a missing catalog row.
func IsStorefrontProductNotFound(err error) bool {
	return errors.Is(err, ErrStorefrontProductNotFound)
}
