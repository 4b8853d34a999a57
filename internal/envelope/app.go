package envelope

import (
	"context"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

// AppEnvelope is the body shape every backend endpoint responds with.
type AppEnvelope[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Data      T      `json:"data"`
}

// Unwrap folds the application-level envelope into the transport Result.
// Both success flags must hold; otherwise the Result fails with
// CodeApplication (or the errorCode the backend supplied).
func Unwrap[T any](r Result[AppEnvelope[T]]) Result[T] {
	if !r.Success {
		return Failure[T](r.Status, r.Err)
	}
	if !r.Data.Success {
		code := r.Data.ErrorCode
		if code == "" {
			code = CodeApplication
		}
		msg := r.Data.Message
		if msg == "" {
			msg = "request failed"
		}
		return fail[T](r.Status, code, clerrors.NewApplicationError(r.Status, msg), msg)
	}
	return ok(r.Status, r.Data.Data)
}

// Call performs req and unwraps the application envelope in one step.
func Call[T any](ctx context.Context, c *Caller, req Request) Result[T] {
	return Unwrap(Do[AppEnvelope[T]](ctx, c, req))
}
