package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrSampleNotFound  = fmt.Errorf("%w: sample", ErrNotFound)

	// Validation errors
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrInvalidAxis        = errors.New("invalid axis")
	ErrDuplicateSample    = errors.New("duplicate sample id")
	ErrMissingSampleID    = errors.New("missing sample id")

	// Availability errors
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewInvalidMeasurementError(fields ...string) error {
	return fmt.Errorf("%w: non-finite %s", ErrInvalidMeasurement, strings.Join(fields, ", "))
}

// NewUnknownAxisError rejects an axis name other than x or y
func NewUnknownAxisError(axis string) error {
	return fmt.Errorf("%w: unknown axis %q", ErrInvalidAxis, axis)
}

// NewInvalidAxisError rejects a variable for a known axis
func NewInvalidAxisError(axis, variable string) error {
	if strings.TrimSpace(variable) == "" {
		return fmt.Errorf("%w: no variable selected for axis %s", ErrInvalidAxis, axis)
	}
	return fmt.Errorf("%w: %q is not a selectable variable for axis %s", ErrInvalidAxis, variable, axis)
}

func NewDatasetUnavailableError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDatasetUnavailable, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatasetUnavailable, reason, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMeasurement) ||
		errors.Is(err, ErrInvalidAxis) ||
		errors.Is(err, ErrDuplicateSample) ||
		errors.Is(err, ErrMissingSampleID)
}

func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrDatasetUnavailable)
}
