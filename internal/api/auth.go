package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// Login exchanges credentials for a bearer token.
func Login(ctx context.Context, c *envelope.Caller, req types.LoginRequest) envelope.Result[types.LoginResponse] {
	return envelope.Call[types.LoginResponse](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/auth/login"),
		Body:   req,
		Op:     "login",
	})
}

// Me returns the user behind the current token.
func Me(ctx context.Context, c *envelope.Caller) envelope.Result[types.User] {
	return envelope.Call[types.User](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/auth/me"),
		Op:     "get current user",
	})
}
