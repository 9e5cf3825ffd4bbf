// Package service implements the booking engine: admission pipeline,
// quota resolution, and the lifecycle sweeper.  Handlers call into this
// package and translate its sentinel errors into HTTP responses.
package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors classifying booking failures.  Specific reasons are
// attached by wrapping, e.g. fmt.Errorf("%w: weekly limit reached",
// ErrQuota), so callers can both match the class with errors.Is and
// show the full message to the user.
var (
	// ErrValidation covers missing or malformed input.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound covers references to absent facilities, users or
	// bookings.
	ErrNotFound = errors.New("not found")
	// ErrQuota covers advance-window, weekly and monthly limit
	// breaches.
	ErrQuota = errors.New("quota exceeded")
	// ErrConflict covers overlapping bookings on the same facility.
	ErrConflict = errors.New("booking conflict")
	// ErrPersistence covers storage-layer failures.
	ErrPersistence = errors.New("storage failure")
)

// HTTPStatus maps a booking-engine error to an HTTP status code.
// Validation, quota and conflict failures are client errors; absent
// references are 404; anything else is a server-side failure.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrQuota), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func quotaf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrQuota, fmt.Sprintf(format, args...))
}

func persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
