package services

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden          = errors.New("forbidden access")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrGatewayDisabled    = errors.New("payment gateway is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateBookingError rejects a booking whose (date, email, treatment)
// triplet is already held by the same patient.
type DuplicateBookingError struct {
	Date string
}

func (e *DuplicateBookingError) Error() string {
	return fmt.Sprintf("You already have a booking on %s", e.Date)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
