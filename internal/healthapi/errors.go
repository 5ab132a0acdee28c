package healthapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the API rejects a login
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrSessionExpired is returned when the API rejects the bearer token
	ErrSessionExpired = errors.New("Authentication failed or session expired")
)

// APIError carries a failure message reported by the health API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ConnectionError wraps a transport failure talking to the health API
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
