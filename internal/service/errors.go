package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrWriteFailed      = errors.New("write failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	// ErrUnavailable reports a capability the calling device lacks, such
	// as push notifications on a simulator.
	ErrUnavailable = errors.New("unavailable on this device")
)

// invalid wraps a validator error so callers can match ErrValidation and
// still reach the per-field messages.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// writeFailed hides the store error behind ErrWriteFailed.
func writeFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrWriteFailed, op, err)
}
