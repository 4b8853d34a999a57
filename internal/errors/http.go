package errors

import "fmt"

// ClassifyHTTPError builds a classified error for a non-2xx response.
// 401 is reported as KindUnauthorized; everything else is KindHTTP.
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	kind := KindHTTP
	if statusCode == 401 {
		kind = KindUnauthorized
	}
	return &ClassifiedError{
		Kind:       kind,
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

// getHTTPErrorCategory maps HTTP status codes to error categories.
func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		return Recoverable
	}
}

// NewHTTPError creates a classified error for HTTP failures.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindNetwork,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// NewClientError creates a classified error for failures before dispatch.
func NewClientError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindClient,
		Underlying: fmt.Errorf("%s: %w", operation, err),
	}
}

// NewApplicationError creates a classified error for a 2xx envelope whose
// success flag is false.
func NewApplicationError(statusCode int, message string) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindApplication,
		StatusCode: statusCode,
		Underlying: fmt.Errorf("application error: %s", message),
	}
}
