package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the session can no longer produce an access
	// token and the user has to sign in again.
	ErrUnauthenticated = errors.New("auth: not authenticated")

	ErrMalformedRefreshResponse = errors.New("auth: malformed refresh response")
)

// RefreshError is returned when the refresh endpoint answers with a non-2xx
// status.
type RefreshError struct {
	StatusCode int
	Message    string
}

func (e *RefreshError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth: refresh rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth: refresh rejected (%d)", e.StatusCode)
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// AuthenticationError is returned by Transport and Fetcher when no access
// token could be obtained. It is distinct from network and HTTP status errors.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return "auth: no access token: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
