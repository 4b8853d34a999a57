// Package envelope turns backend calls into a uniform Result value.
//
// Network-calling code never returns a bare error to its caller: every
// outcome, including transport failures and client-side mistakes made before
// a request could be sent, is folded into a Result whose Success flag the
// caller branches on.
package envelope

import (
	"strings"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

// Error codes carried in Error.ErrorCode.
const (
	CodeNetwork         = "NETWORK_ERROR"
	CodeCancelled       = "REQUEST_CANCELLED"
	CodeClient          = "CLIENT_ERROR"
	CodeHTTP            = "HTTP_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeApplication     = "APPLICATION_ERROR"
)

// StatusClientError is reported when a call failed before dispatch.
const StatusClientError = 500

// Error is the failure half of a Result.
type Error struct {
	Message   []string `json:"message"`
	ErrorCode string   `json:"errorCode"`

	cause error
}

func (e *Error) Error() string {
	if len(e.Message) == 0 {
		return e.ErrorCode
	}
	return strings.Join(e.Message, "; ")
}

// Unwrap exposes the classified cause.
func (e *Error) Unwrap() error { return e.cause }

// Category reports whether the failure is worth retrying.
func (e *Error) Category() clerrors.ErrorCategory {
	if e.cause == nil {
		return clerrors.Irrecoverable
	}
	if c, ok := e.cause.(clerrors.Categorized); ok {
		return c.Category()
	}
	return clerrors.Recoverable
}

// Result is the outcome of one backend call.
//
// Success is true iff the response status was 2xx and no transport failure
// occurred. When Success is false Data holds the zero value and Err carries a
// non-empty Message.
type Result[T any] struct {
	Success bool
	Status  int
	Data    T
	Err     *Error
}

// Unpack converts r into the conventional (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	if r.Success {
		return r.Data, nil
	}
	var zero T
	if r.Err == nil {
		return zero, &Error{Message: []string{"request failed"}, ErrorCode: CodeHTTP}
	}
	return zero, r.Err
}

// Unauthorized reports whether the call failed with a 401.
func (r Result[T]) Unauthorized() bool {
	return !r.Success && r.Err != nil && r.Err.ErrorCode == CodeUnauthorized
}

func ok[T any](status int, data T) Result[T] {
	return Result[T]{Success: true, Status: status, Data: data}
}

func fail[T any](status int, code string, cause error, message ...string) Result[T] {
	msgs := make([]string, 0, len(message))
	for _, m := range message {
		if m = strings.TrimSpace(m); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		msgs = []string{"request failed"}
	}
	return Result[T]{
		Status: status,
		Err:    &Error{Message: msgs, ErrorCode: code, cause: cause},
	}
}

// Failure builds a failed Result from an existing Error, keeping its status.
// Used when a typed Result must be re-shaped without losing the failure.
func Failure[T any](status int, err *Error) Result[T] {
	if err == nil {
		return fail[T](status, CodeHTTP, nil)
	}
	return Result[T]{Status: status, Err: err}
}
