package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNetwork           = errors.New("upstream request failed")
	ErrNoUsableModel     = errors.New("no models support generateContent")
	ErrNoActiveModel     = errors.New("no active model selected")
	ErrMalformedResponse = errors.New("malformed generate response")
	ErrLoggedOut         = errors.New("session logged out")
)

// NetworkError is a non-success HTTP response from an upstream API, or a
// transport failure (StatusCode 0) before any response arrived
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
	}
	msg := fmt.Sprintf("%s: %d %s", e.Endpoint, e.StatusCode, e.Status)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Is matches ErrNetwork
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewNetworkError creates a NetworkError
func NewNetworkError(endpoint string, statusCode int, status, body string) *NetworkError {
	return &NetworkError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}

// SessionClosedError describes why a messaging session closed
type SessionClosedError struct {
	Reason CloseReason
}

func (e *SessionClosedError) Error() string {
	if e.Reason.LoggedOut {
		return "session closed: logged out"
	}
	if e.Reason.Detail != "" {
		return "session closed: " + e.Reason.Detail
	}
	return "session closed"
}

// Is matches ErrLoggedOut when the session was logged out
func (e *SessionClosedError) Is(target error) bool {
	return target == ErrLoggedOut && e.Reason.LoggedOut
}
