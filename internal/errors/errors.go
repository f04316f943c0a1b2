package errors

import (
	"errors"
	"fmt"
)

// Common error types for the menu API client
var (
	// Input validation errors
	ErrPhoneRequired      = errors.New("phone number is required")
	ErrPasswordRequired   = errors.New("password and confirmation are required")
	ErrPasswordsDontMatch = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidArgument    = errors.New("invalid argument")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token stored")
	ErrInvalidToken     = errors.New("invalid token")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
