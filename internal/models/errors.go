package models

import "errors"

// Sentinel errors shared by stores, services and handlers. Callers wrap them
// with context and test with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInterval is returned when end_time is not after start_time.
	ErrInvalidInterval = errors.New("end_time must be after start_time")
	// ErrBookingConflict is returned when the interval overlaps an active reservation on the same resource.
	ErrBookingConflict = errors.New("reservation time conflicts with an existing reservation")
	// ErrIntegrityViolation is a foreign-key or uniqueness violation surfaced by the store.
	ErrIntegrityViolation = errors.New("integrity violation")
	// ErrValidation is returned when input fails field validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)
