package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application-level error with a stable code, an
// HTTP-like status and an optional cause.
type AppError struct {
	Code    string
	Status  int
	Message string
	Detail  any
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError.
func New(code string, status int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

// AuthRequired reports a missing credential before any network call is made.
func AuthRequired(message string) *AppError {
	return New(ErrCodeAuthRequired, http.StatusUnauthorized, message, nil)
}

// Remote wraps a non-2xx remote response. A 401 is classified as an expired
// authorization so that the session-aware client can recover it once.
func Remote(status int, message string, detail any) *AppError {
	code := ErrCodeRemoteFailure
	if status == http.StatusUnauthorized {
		code = ErrCodeAuthExpired
	}
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
		Detail:  detail,
	}
}

// InvalidInput reports a malformed operation input, rejected before any
// network call.
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, http.StatusBadRequest, message, nil)
}

// AsAppError extracts an AppError from an error chain; any other error is
// presented as a generic remote failure so callers always see a status.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrCodeRemoteFailure, http.StatusInternalServerError, err.Error(), err)
}

// IsAuthExpired reports whether err is a 401-classified remote failure, the
// only class recovered by a refresh-and-retry.
func IsAuthExpired(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeAuthExpired
}

// IsAuthError reports whether err belongs to either authentication class.
func IsAuthError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == ErrCodeAuthRequired || appErr.Code == ErrCodeAuthExpired
}

// Error codes
const (
	ErrCodeAuthRequired     = "AUTH_REQUIRED"
	ErrCodeAuthExpired      = "AUTH_EXPIRED"
	ErrCodeRemoteFailure    = "REMOTE_FAILURE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeKnowledgeInvalid = "KNOWLEDGE_INVALID"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
)
