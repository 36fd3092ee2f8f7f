package errors

import (
	"errors"
	"fmt"
)

var (
	// Generic errors.
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")

	// Authentication errors.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMissingToken        = errors.New("access token missing")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrRevokedToken        = errors.New("token has been revoked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// User errors.
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already in use")
	ErrUserInactive = errors.New("user account is inactive")

	// CSRF errors.
	ErrCSRFTokenMissing = errors.New("CSRF token missing; include the X-CSRF-Token header")
	ErrCSRFTokenInvalid = errors.New("invalid CSRF token")
)

// AppError carries an HTTP status and API error code alongside the
// wrapped cause, so handlers can map domain failures uniformly.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{Err: err, Message: message, StatusCode: statusCode, Code: code}
}
