// Package errors classifies client SDK failures.
// Category drives retry decisions in the prefetch executor; Kind mirrors the
// failure taxonomy surfaced to callers through the response envelope.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may be retried with exponential backoff.
	// Examples: 500 Internal Server Error, connection refused.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail immediately without retry.
	// Examples: 401 Unauthorized, 400 Bad Request, an application-level failure.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Kind is the failure class of a backend call.
type Kind string

const (
	KindNetwork      Kind = "network"      // no response received
	KindHTTP         Kind = "http"         // non-2xx response
	KindApplication  Kind = "application"  // 2xx with success=false
	KindClient       Kind = "client"       // failed before dispatch
	KindUnauthorized Kind = "unauthorized" // 401, session invalidated
	KindDecode       Kind = "decode"       // 2xx with an unreadable body
)

// Categorized is implemented by errors that know their retry category.
type Categorized interface {
	Category() ErrorCategory
}

// ClassifiedError wraps an error with categorization metadata for retry policies.
type ClassifiedError struct {
	Kind       Kind
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category(), e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category(), e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// Category implements Categorized.
func (e *ClassifiedError) Category() ErrorCategory {
	switch e.Kind {
	case KindNetwork:
		return Recoverable
	case KindHTTP:
		return getHTTPErrorCategory(e.StatusCode)
	default:
		return Irrecoverable
	}
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var c Categorized
	if stderrors.As(err, &c) {
		return c.Category() == Irrecoverable
	}
	return false
}

// IsRecoverable reports whether err carries a Recoverable category.
// Uncategorized errors are not considered recoverable.
func IsRecoverable(err error) bool {
	var c Categorized
	if stderrors.As(err, &c) {
		return c.Category() == Recoverable
	}
	return false
}
