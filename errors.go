package framequery

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure surfaced by the SDK.
type ErrorCode string

const (
	ErrAuthentication   ErrorCode = "AUTHENTICATION"    // HTTP 401
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED" // HTTP 403
	ErrNotFound         ErrorCode = "NOT_FOUND"         // HTTP 404
	ErrRateLimited      ErrorCode = "RATE_LIMITED"      // HTTP 429
	ErrAPI              ErrorCode = "API_ERROR"         // any other non-2xx
	ErrJobFailed        ErrorCode = "JOB_FAILED"        // job reached FAILED
	ErrTimeout          ErrorCode = "TIMEOUT"           // poll deadline exceeded
	ErrUploadFailed     ErrorCode = "UPLOAD_FAILED"     // signed-URL PUT rejected
	ErrTransport        ErrorCode = "TRANSPORT"         // network or local I/O failure
)

// Error is the single error type returned by every SDK operation.
// Code identifies the taxonomy kind; the remaining fields are populated
// where they apply (HTTPStatus for API responses, RetryAfter for 429s,
// JobID for job-scoped failures, Cause for wrapped transport errors).
type Error struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	RetryAfter float64 // seconds; set only for 429 responses with a parseable Retry-After
	JobID      string
	Body       map[string]any
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("framequery: [%s] %d: %s", e.Code, e.HTTPStatus, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("framequery: [%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("framequery: [%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts the SDK error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func codeIs(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsAuthentication reports whether err is an HTTP 401 failure.
func IsAuthentication(err error) bool { return codeIs(err, ErrAuthentication) }

// IsPermissionDenied reports whether err is an HTTP 403 failure.
func IsPermissionDenied(err error) bool { return codeIs(err, ErrPermissionDenied) }

// IsNotFound reports whether err is an HTTP 404 failure.
func IsNotFound(err error) bool { return codeIs(err, ErrNotFound) }

// IsRateLimited reports whether err is an HTTP 429 failure.
func IsRateLimited(err error) bool { return codeIs(err, ErrRateLimited) }

// IsJobFailed reports whether err means a polled job reached FAILED.
func IsJobFailed(err error) bool { return codeIs(err, ErrJobFailed) }

// IsTimeout reports whether err means the poll deadline was exceeded.
func IsTimeout(err error) bool { return codeIs(err, ErrTimeout) }
