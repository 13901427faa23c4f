package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCountryNotFound = fmt.Errorf("country %w", ErrNotFound)
	ErrSightNotFound   = fmt.Errorf("sight %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	// stored data lacks a value the request needs; not user-correctable
	ErrMissingLocalization = errors.New("missing localization")

	ErrInvalidRating       = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidID           = errors.New("malformed identifier")

	// the aggregate changed between read and write
	ErrConflict = errors.New("concurrent modification")

	ErrLoginTaken         = errors.New("login already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// IsValidation reports whether err is a caller-correctable input fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrUnsupportedLanguage) ||
		errors.Is(err, ErrInvalidID)
}
