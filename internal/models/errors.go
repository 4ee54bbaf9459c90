package models

import "errors"

// Sentinel errors shared by services and storage backends.
var (
	// ErrInvalidAllocation is returned when an allocation component is negative,
	// non-finite, or above 100. It is never silently clamped.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)
