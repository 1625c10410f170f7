// Package domainerrors carries coded errors from the domain layer to the
// transport layer. Services return these; handlers map the Code to a status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, wire-visible error classification.
type Code string

// Governance error kinds.
const (
	CodeInvalidAmount       Code = "invalid_amount"
	CodeOverflow            Code = "overflow"
	CodeInsufficientBalance Code = "insufficient_balance"
	CodeUnauthorized        Code = "unauthorized"
	CodeInvalidRealmConfig  Code = "invalid_realm_config"
	CodeRecordNotFound      Code = "record_not_found"
	CodeVotesOutstanding    Code = "votes_outstanding"
	CodeTransferFailed      Code = "transfer_failed"
	CodeOracleUnavailable   Code = "oracle_unavailable"
)

// General-purpose codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a domain error with a code and a caller-safe message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the outermost domain code in the chain, or CodeInternal when
// the chain holds no domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost domain error in the chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf returns the caller-safe message of the outermost domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
