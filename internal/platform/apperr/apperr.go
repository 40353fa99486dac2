// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error type shared by every Checkmate layer.

Domain packages declare their failure kinds as [*AppError] sentinels (for example
GAME_NOT_FOUND or NOT_YOUR_TURN) and return them as plain Go errors. The transport
layer later turns any [*AppError] into a JSON envelope with the matching HTTP status.

Matching:

  - [errors.Is] compares two AppErrors by Code, so a sentinel matches a copy
    carrying extra Details or a Cause.
  - [As] extracts the first AppError from a wrapped chain.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Checkmate API.
//
// # Security
//
// Cause is for server-side logging only and is never serialised to clients.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "GAME_NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] with the same Code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// New creates an [AppError] with an explicit code and status.
//
// Domain packages use it to declare their own failure kinds:
//
//	var ErrNotYourTurn = apperr.New("NOT_YOUR_TURN", http.StatusConflict, "It is not your turn")
func New(code string, status int, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: status,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return New("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return New("UNAUTHORIZED", http.StatusUnauthorized, msg)
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return New("FORBIDDEN", http.StatusForbidden, msg)
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return New("CONFLICT", http.StatusConflict, msg)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := New("VALIDATION_ERROR", http.StatusBadRequest, msg)
	err.Details = details
	return err
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return New("RATE_LIMITED", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	err := New("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, msg)
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
