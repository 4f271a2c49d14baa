package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("project not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTitleRequired is the InvalidInput case for a blank title, on create,
	// replace and update alike.
	ErrTitleRequired = fmt.Errorf("%w: title is required", ErrInvalidInput)
)

// StatusFor maps a project error to its HTTP status.
// Unclassified errors map to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
