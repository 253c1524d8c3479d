package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPassword is returned when the supplied password does not match
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNotConfigured is returned when no password or signing secret is set
	ErrNotConfigured = errors.New("authentication not configured")

	// ErrInvalidToken is returned for missing, malformed, forged or expired tokens
	ErrInvalidToken = errors.New("invalid token")
)

// ThrottledError is returned while a client key is locked out.
type ThrottledError struct {
	RetryAfter int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many login attempts, retry after %ds", e.RetryAfter)
}
