package jobhunter

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the client's failure taxonomy. Callers match them
// with errors.Is; the concrete cause stays available through wrapping.
var (
	// ErrInvalidCredentials means the backend rejected login input.
	ErrInvalidCredentials = errors.New("jobhunter: invalid credentials")

	// ErrAuthExpired means a 401 that even a refresh could not repair.
	// The session is over; the store has already been cleared.
	ErrAuthExpired = errors.New("jobhunter: session expired")

	// ErrNetwork means no response was received at all.
	ErrNetwork = errors.New("jobhunter: network failure")

	// ErrServer means a 5xx or a malformed response envelope.
	ErrServer = errors.New("jobhunter: server error")

	// ErrForbidden means a role mismatch. It is produced at the guard
	// level, never from an HTTP response.
	ErrForbidden = errors.New("jobhunter: forbidden")
)

// APIError carries the backend's response envelope for a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("jobhunter: api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("jobhunter: api error (status %d): %s", e.StatusCode, e.Message)
}

// Is maps HTTP statuses onto the sentinel taxonomy so that
// errors.Is(err, ErrServer) works without unwrapping by hand.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrServer:
		return e.StatusCode >= 500
	case ErrForbidden:
		return e.StatusCode == 403
	}
	return false
}
