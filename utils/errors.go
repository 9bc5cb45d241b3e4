package utils

import (
	"fmt"
	"net/http"
)

// Application error codes: HTTP status followed by a two digit sequence.
const (
	CodeValidation   = 40001
	CodeAuthFailed   = 40101
	CodeTokenInvalid = 40102
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeRouteMissing = 40400
	CodeConflict     = 40901
	CodeInternal     = 50001
)

// AppError is an error that already knows how it should be rendered to a client.
type AppError struct {
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationError(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

func AuthError(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Code: CodeTokenInvalid, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Status: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func ConflictError(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

// InternalError hides err from the client and keeps it for the log.
func InternalError(err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error", Err: err}
}
