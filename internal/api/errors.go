package api

import (
	"errors"
	"fmt"

	"github.com/xelth-com/mfgtrack/internal/mockstore"
)

var (
	// ErrNotImplemented matches NotImplementedError
	ErrNotImplemented = errors.New("not implemented")
	// ErrNotFound is returned by mock mode for unknown ids
	ErrNotFound = mockstore.ErrNotFound
)

// EndpointNotFoundError is returned when the backend answers 404.
// The message names the path so frontend/backend mismatches are easy to spot.
type EndpointNotFoundError struct {
	Endpoint string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("API endpoint not found: %s (check that the backend exposes this path)", e.Endpoint)
}

// RequestFailedError is any other non-2xx answer, or a 2xx body that is not JSON
type RequestFailedError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

// ApplicationError is a 2xx answer whose envelope says success: false.
// Error() is exactly the backend message.
type ApplicationError struct {
	Endpoint string
	Message  string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// NotImplementedError marks operations the backend has no endpoint for yet
type NotImplementedError struct {
	Operation string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not implemented by the backend yet", e.Operation)
}

// Is lets errors.Is(err, ErrNotImplemented) match
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// StatusCode extracts the HTTP status from a transport error, 0 when unknown
func StatusCode(err error) int {
	var nf *EndpointNotFoundError
	if errors.As(err, &nf) {
		return 404
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.Status
	}
	return 0
}
