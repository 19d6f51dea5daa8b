package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures seen while scraping a remote collection.
type ErrorType string

const (
	// ErrorTypeNetwork covers transient transport failures: timeouts,
	// connection refusal, DNS errors. Retryable with backoff.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeRateLimit is an HTTP 429. Handled by a fixed cooldown and a
	// re-issue of the same request, never by the retry budget.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeResponse is any other non-2xx status. Fatal for the run.
	ErrorTypeResponse ErrorType = "response"

	// ErrorTypeParsing is a 2xx response whose body cannot be decoded or is
	// missing required fields. Fatal for the run.
	ErrorTypeParsing ErrorType = "parsing"

	// ErrorTypeCheckpoint is a checkpoint read/write failure. Logged and
	// recovered at the call site, never fatal.
	ErrorTypeCheckpoint ErrorType = "checkpoint"

	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a categorized scraping error. Code carries the HTTP status when
// one was observed, zero otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a categorized error.
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// TypeOf returns the category of err, or ErrorTypeUnknown when err is not a
// categorized error.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err is a categorized error of the given type.
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsRetryable reports whether an error category should be retried with
// backoff. Only transient transport failures qualify; rate limiting has its
// own cooldown path and everything else aborts the run.
func IsRetryable(errorType ErrorType) bool {
	return errorType == ErrorTypeNetwork
}
