package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound indicates the requested (or target) user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoMatches indicates a match query succeeded but no candidate survived filtering.
	ErrNoMatches = errors.New("no matches found")
	// ErrStorageDisabled is returned by snapshot operations when no bucket is configured.
	ErrStorageDisabled = errors.New("snapshot storage is not configured")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
