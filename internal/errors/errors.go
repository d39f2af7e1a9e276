// Package errors holds the sentinel errors shared across Mission Control
// and the error type for failed calls to the REST collaborators.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTimeout              = errors.New("operation timed out")
	ErrRateLimit            = errors.New("rate limit exceeded")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnavailable          = errors.New("service unavailable")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// APIError is a failed call to a REST collaborator. StatusCode is 0 when no
// response arrived.
type APIError struct {
	Service    string
	Request    string // "GET /api/memory"
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Service
	if e.Request != "" {
		msg += " " + e.Request
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates an error for a non-2xx response.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

// StatusError is NewAPIError for request, wrapping the sentinel that
// matches the status so callers can branch with errors.Is.
func StatusError(service, request string, statusCode int, body string) *APIError {
	e := &APIError{Service: service, Request: request, StatusCode: statusCode, Message: body}
	switch statusCode {
	case http.StatusNotFound:
		e.Err = ErrNotFound
	case http.StatusTooManyRequests:
		e.Err = ErrRateLimit
	case http.StatusServiceUnavailable:
		e.Err = ErrUnavailable
	case http.StatusGatewayTimeout:
		e.Err = ErrTimeout
	}
	return e
}

// TransportError wraps a failure to get any response for request.
func TransportError(service, request string, err error) *APIError {
	return &APIError{Service: service, Request: request, Err: err}
}

// IsRetryable reports whether err is transient: no response, throttling,
// a 5xx, or one of the transient sentinels.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 0 || apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return true
		}
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable)
}
