package client

import (
	"context"

	"github.com/stockroom/stockroom-client/internal/api"
	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/session"
	"github.com/stockroom/stockroom-client/internal/types"
)

// Login exchanges credentials for a token and makes the returned session
// active. Login observers run before it returns.
func (c *Client) Login(ctx context.Context, email, password string) Result[User] {
	res := api.Login(c.bind(ctx), c.caller, types.LoginRequest{Email: email, Password: password})
	if !res.Success {
		return envelope.Failure[User](res.Status, res.Err)
	}
	s := session.Session{User: res.Data.User, Token: res.Data.Token, ExpiresAt: res.Data.ExpiresAt}
	if err := c.sess.Login(ctx, s); err != nil {
		c.log.Error().Err(err).Msg("persist session")
		return envelope.Failure[User](envelope.StatusClientError, &envelope.Error{
			Message:   []string{err.Error()},
			ErrorCode: envelope.CodeClient,
		})
	}
	return Result[User]{Success: true, Status: res.Status, Data: res.Data.User}
}

// Logout ends the session locally and clears the persisted copy.
func (c *Client) Logout(ctx context.Context) error {
	return c.sess.Logout(ctx)
}

// Restore loads a session persisted by an earlier run. It reports whether
// one was found and is still valid.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	return c.sess.Restore(ctx)
}

// Authenticated reports whether a session is active.
func (c *Client) Authenticated() bool { return c.sess.Authenticated() }

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser() (User, bool) {
	s, ok := c.sess.Current()
	return s.User, ok
}

// Me asks the backend who the current token belongs to.
func (c *Client) Me(ctx context.Context) Result[User] {
	return api.Me(c.bind(ctx), c.caller)
}

// OnLogin registers fn to run after every successful Login. The returned
// func unregisters it.
func (c *Client) OnLogin(fn func(ctx context.Context, ev SessionEvent)) func() {
	return c.sess.OnLogin(fn)
}

// OnLogout registers fn to run when the session ends, whether by Logout
// or because the backend answered 401. ev.Expired distinguishes the two.
func (c *Client) OnLogout(fn func(ctx context.Context, ev SessionEvent)) func() {
	return c.sess.OnLogout(fn)
}
