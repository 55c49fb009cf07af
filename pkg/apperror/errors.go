package apperror

import (
	"fmt"
	"net/http"
)

// Error codes exposed in the API error envelope.
const (
	CodeBadRequest   = "BAD_REQUEST_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	HTTPStatus  int    `json:"-"`
	Err         error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Description)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, description string, httpStatus int) *AppError {
	return &AppError{
		Code:        code,
		Description: description,
		HTTPStatus:  httpStatus,
	}
}

// BadRequest returns a validation error (400).
func BadRequest(description string) *AppError {
	return New(CodeBadRequest, description, http.StatusBadRequest)
}

// Unauthorized returns an authentication error (401).
func Unauthorized() *AppError {
	return New(CodeUnauthorized, "Invalid API credentials", http.StatusUnauthorized)
}

// NotFound returns a scope-miss error (404). Cross-merchant access
// deliberately surfaces as not-found, never forbidden.
func NotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Internal wraps an unexpected error as a 500. The wrapped error is logged
// but never serialized to the client.
func Internal(err error) *AppError {
	return &AppError{
		Code:        CodeInternal,
		Description: "Internal server error",
		HTTPStatus:  http.StatusInternalServerError,
		Err:         err,
	}
}
