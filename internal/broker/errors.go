package broker

import (
	"errors"
	"fmt"

	"github.com/interposehq/interpose/internal/tape"
)

// ReplayError represents an expected, non-fatal outcome of a replay
// call. It is never retried internally; retry policy, if any, belongs
// to the caller. The unmatched request is carried for diagnostics so
// callers can report what was asked without re-running.
type ReplayError struct {
	// Code identifies the failure category.
	Code ReplayErrorCode

	// Message is a human-readable description.
	Message string

	// Request is the request that could not be served.
	Request tape.InteractionRequest
}

// ReplayErrorCode categorizes replay failures.
type ReplayErrorCode string

const (
	// ErrCodeNotFound indicates no recorded interaction matches the
	// request and the mode does not permit live forwarding.
	ErrCodeNotFound ReplayErrorCode = "INTERACTION_NOT_FOUND"

	// ErrCodeResponderRequired indicates record mode was asked to
	// forward but no live responder is configured.
	ErrCodeResponderRequired ReplayErrorCode = "LIVE_RESPONDER_REQUIRED"
)

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s: %s (protocol=%s, action=%s, target=%s)",
		e.Code, e.Message, e.Request.Protocol, e.Request.Action, e.Request.Target)
}

// IsNotFound returns true if the error is an interaction-not-found
// failure. Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNotFound
	}
	return false
}

// IsResponderRequired returns true if the error is a
// live-responder-required failure. Uses errors.As to handle wrapped
// errors.
func IsResponderRequired(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeResponderRequired
	}
	return false
}

// NewNotFoundError creates a ReplayError for an unmatched request.
func NewNotFoundError(request tape.InteractionRequest) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeNotFound,
		Message: "no recorded interaction matches request",
		Request: request,
	}
}

// NewResponderRequiredError creates a ReplayError for record mode
// without a configured responder.
func NewResponderRequiredError(request tape.InteractionRequest) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeResponderRequired,
		Message: "record mode requires a live responder",
		Request: request,
	}
}
