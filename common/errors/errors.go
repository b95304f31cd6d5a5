package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Authentication errors (1xxx)
	ErrCodeNotAuthorized ErrorCode = "E1001"
	ErrCodeTokenExpired  ErrorCode = "E1002"
	ErrCodeInvalidToken  ErrorCode = "E1003"

	// Validation errors (2xxx)
	ErrCodeValidation   ErrorCode = "E2001"
	ErrCodeInvalidInput ErrorCode = "E2002"
	ErrCodeMissingField ErrorCode = "E2003"

	// Resource errors (3xxx)
	ErrCodeNotFound      ErrorCode = "E3001"
	ErrCodeAlreadyExists ErrorCode = "E3002"

	// Throttling errors (4xxx)
	ErrCodeRateLimited ErrorCode = "E4001"

	// External service errors (5xxx)
	ErrCodeCaptchaFailed ErrorCode = "E5001"
	ErrCodeEmailError    ErrorCode = "E5002"

	// Internal errors (9xxx)
	ErrCodeInternal ErrorCode = "E9001"
	ErrCodeDatabase ErrorCode = "E9002"
)

// AppError is a domain error carrying an error code, a client-safe
// message and an optional wrapped cause. Handlers translate the code to
// an HTTP status at the response boundary; causes never reach clients.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`

	// RetryAfter is set on rate-limit errors only.
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// New creates an AppError with the status derived from the code
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus(code),
	}
}

// Wrap creates an AppError around an existing error
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// ============================================================
// Predefined constructors
// ============================================================

// NotAuthorized is used for failed logins and invalid sessions. Callers
// must pass the same message for "user not found" and "wrong password"
// to keep the two indistinguishable.
func NotAuthorized(message string) *AppError {
	return New(ErrCodeNotAuthorized, message)
}

func InvalidCredentials() *AppError {
	return New(ErrCodeNotAuthorized, "Invalid username or password.")
}

func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "Session has expired.")
}

func InvalidToken() *AppError {
	return New(ErrCodeInvalidToken, "Invalid or expired token.")
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("%s is required.", field))
}

func NotFound(resource, message string) *AppError {
	return New(ErrCodeNotFound, message).withResource(resource)
}

func AlreadyExists(resource, message string) *AppError {
	return New(ErrCodeAlreadyExists, message).withResource(resource)
}

// RateLimited carries a retry-after hint surfaced as the Retry-After header.
func RateLimited(retryAfter time.Duration) *AppError {
	appErr := New(ErrCodeRateLimited, "Too many requests. Please try again later.")
	appErr.RetryAfter = retryAfter
	return appErr
}

func CaptchaFailed() *AppError {
	return New(ErrCodeCaptchaFailed, "CAPTCHA verification failed.")
}

func EmailError(err error) *AppError {
	return Wrap(err, ErrCodeEmailError, "Failed to send email.")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(err error) *AppError {
	return Wrap(err, ErrCodeDatabase, "An unexpected error occurred.")
}

func (e *AppError) withResource(resource string) *AppError {
	if e.Message == "" {
		e.Message = resource
	}
	return e
}

// ============================================================
// Helpers
// ============================================================

func httpStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotAuthorized, ErrCodeTokenExpired, ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeCaptchaFailed:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeEmailError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// As converts an error to *AppError when possible
func As(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// From converts any error into an *AppError, wrapping unknown errors as
// internal so their detail never leaks to a client.
func From(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, "An unexpected error occurred.")
}
