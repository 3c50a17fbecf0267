// Package apperrors defines the application error taxonomy. Every error
// carries a stable machine-readable code, the HTTP status it maps to, and
// a human-readable message.
package apperrors

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code so sentinel errors compare equal to copies carrying
// a customized message.
func (e *Error) Is(target error) bool {
	var appErr *Error
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// WithMessage returns a copy of the error with a different message but
// the same code and status.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Status: e.Status}
}

var (
	ErrUnauthorized = &Error{
		Code:    "UNAUTHORIZED",
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}
	ErrSessionExpired = &Error{
		Code:    "SESSION_EXPIRED",
		Message: "Session has expired",
		Status:  http.StatusUnauthorized,
	}
	ErrWorkspaceNotFound = &Error{
		Code:    "WORKSPACE_NOT_FOUND",
		Message: "Workspace not found",
		Status:  http.StatusNotFound,
	}
	ErrForbidden = &Error{
		Code:    "FORBIDDEN",
		Message: "Insufficient permissions",
		Status:  http.StatusForbidden,
	}
	ErrNotFound = &Error{
		Code:    "NOT_FOUND",
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}
	ErrValidation = &Error{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Status:  http.StatusBadRequest,
	}
	ErrConflict = &Error{
		Code:    "CONFLICT",
		Message: "Resource already exists",
		Status:  http.StatusConflict,
	}
	ErrCannotRemoveSelf = &Error{
		Code:    "CANNOT_REMOVE_SELF",
		Message: "Members cannot remove themselves from a workspace",
		Status:  http.StatusBadRequest,
	}
	ErrCannotRemoveLastOwner = &Error{
		Code:    "CANNOT_REMOVE_LAST_OWNER",
		Message: "The last owner of a workspace cannot be removed",
		Status:  http.StatusBadRequest,
	}
	ErrInternal = &Error{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

// From extracts an *Error from err, falling back to ErrInternal so
// unclassified errors never leak internals to the caller.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}
