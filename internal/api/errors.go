package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any 401 returned by the backend.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("portfolio api unavailable")
)

// Error is a non-2xx answer from the portfolio API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("portfolio api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("portfolio api: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func newError(status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	e := &Error{Status: status}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	return e
}

// Message returns the backend's own explanation for err, or fallback when
// the backend gave none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode maps err to the status the console should answer with.
func StatusCode(err error) int {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// localError is a failure on this side of the wire: a request that could not
// be built or a body that could not be decoded. Sending again cannot fix it and
// it says nothing about the backend's health.
type localError struct{ err error }

func (e *localError) Error() string { return e.err.Error() }
func (e *localError) Unwrap() error { return e.err }

func local(format string, args ...any) error {
	return &localError{err: fmt.Errorf(format, args...)}
}

func isLocal(err error) bool {
	var le *localError
	return errors.As(err, &le)
}

// retryable reports whether a read may be sent again. Transport failures,
// client timeouts included, and 5xx answers are; the caller's own
// cancellation is checked separately.
func retryable(err error) bool {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled) || isLocal(err) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}
