package auth

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrLoginDisabled       = errors.New("password login is not enabled")
)

// StatusFor maps an authorization error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrLoginDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor is the client-facing message for an authorization status.
func MessageFor(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden: admin access required"
	case http.StatusServiceUnavailable:
		return "Authentication service unavailable"
	default:
		return "Internal server error"
	}
}
