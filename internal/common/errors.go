package common

import (
	"errors"
	"net/http"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NotFound builds the canonical 404 error.
func NotFound(message string) *AppError {
	return NewAppError("NOT_FOUND", message, http.StatusNotFound, nil)
}

// Validation builds the canonical 400 error with optional field details.
func Validation(message string, details any) *AppError {
	err := NewAppError("VALIDATION", message, http.StatusBadRequest, nil)
	err.Details = details
	return err
}

// Conflict builds the canonical 409 error.
func Conflict(message string) *AppError {
	return NewAppError("CONFLICT", message, http.StatusConflict, nil)
}

// Internal wraps an unexpected error without leaking its text to clients.
func Internal(err error) *AppError {
	return NewAppError("INTERNAL", "internal error", http.StatusInternalServerError, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
