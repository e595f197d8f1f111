// Package procerr defines the coded error taxonomy shared by the procedure
// engine. Every rule violation raised by the core is an *Error carrying a
// machine-readable Code plus contextual metadata for user-facing messages.
package procerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeNotFound               Code = "NOT_FOUND"
	CodeInvalidState           Code = "INVALID_STATE"
	CodeNotEligible            Code = "NOT_ELIGIBLE"
	CodeOutOfTurn              Code = "OUT_OF_TURN"
	CodeQuorumNotMet           Code = "QUORUM_NOT_MET"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeInvalidArgument        Code = "INVALID_ARGUMENT"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrNotFound               = &Error{Code: CodeNotFound}
	ErrInvalidState           = &Error{Code: CodeInvalidState}
	ErrNotEligible            = &Error{Code: CodeNotEligible}
	ErrOutOfTurn              = &Error{Code: CodeOutOfTurn}
	ErrQuorumNotMet           = &Error{Code: CodeQuorumNotMet}
	ErrConcurrentModification = &Error{Code: CodeConcurrentModification}
	ErrInvalidArgument        = &Error{Code: CodeInvalidArgument}
)

// Error is a recoverable procedural error.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string // current state, required state, blocking entity
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithMetadata creates an error carrying contextual fields.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates an error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound reports a missing entity of the given kind.
func NotFound(kind, id string) *Error {
	return WithMetadata(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id), map[string]string{
		"entity": kind,
		"id":     id,
	})
}

// InvalidState reports an operation attempted from a forbidding state.
func InvalidState(message, current, required string) *Error {
	md := map[string]string{"current_state": current}
	if required != "" {
		md["required_state"] = required
	}
	return WithMetadata(CodeInvalidState, message, md)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed  bool
	Code     Code
	Reason   string // Human-readable reason (populated when not allowed)
	Metadata map[string]string
}

// Allow returns a passing guard result.
func Allow() GuardResult {
	return GuardResult{Allowed: true}
}

// Deny returns a failing guard result.
func Deny(code Code, reason string, metadata map[string]string) GuardResult {
	return GuardResult{
		Allowed:  false,
		Code:     code,
		Reason:   reason,
		Metadata: metadata,
	}
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return WithMetadata(r.Code, r.Reason, r.Metadata)
}
