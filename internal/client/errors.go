package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates the request never produced a usable response
	ErrTransport = errors.New("transport failure")

	// ErrVoteInFlight indicates a vote on the subject is still awaiting its response
	ErrVoteInFlight = errors.New("a vote on this subject is already in flight")

	// ErrLoadSuperseded indicates a newer LoadAggregates call replaced this one
	ErrLoadSuperseded = errors.New("aggregate load superseded")
)

// APIError is a non-2xx response carrying the server's error body
type APIError struct {
	// wrapped is the sentinel the status maps to, if any
	wrapped    error
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.wrapped
}
