// Package sentinel holds the errors card stores return. The card service maps
// them to domain errors in one place.
package sentinel

import "errors"

var (
	// ErrNotFound means no profile is cached for the token.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the store refused the record itself.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable means the backing store could not be read or written.
	// It is never reported as a miss.
	ErrUnavailable = errors.New("unavailable")
)
